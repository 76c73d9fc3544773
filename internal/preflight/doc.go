// Package preflight provides readiness checks for the filesystem paths,
// run database, and publishing API the quality gate depends on.
//
// The CLI "thefilter doctor" command renders RunAll plus the optional
// online CheckButtondown probe; nothing in the pipeline itself calls
// these, so a failing check never blocks a run that is already moving.
package preflight
