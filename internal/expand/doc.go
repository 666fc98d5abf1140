// Package expand turns resolved verb mappings into ordered canonical steps
// and threads implicitly produced values between steps of one composed
// expansion.
package expand
