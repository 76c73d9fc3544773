// Package lint evaluates a parsed newsletter against a fixed catalogue of
// structural and stylistic rules and aggregates the results into a report
// with an overall pass/fail verdict.
//
// Rules are independent: none observes another's findings, so the engine
// runs them in parallel and merges results deterministically by catalogue
// order, then document order within each rule. Only blocking findings fail
// a report; advisory findings are surfaced but do not gate publication.
package lint
