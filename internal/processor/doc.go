// Package processor contains the command logic of blogtrans. It resolves
// the flags into a backend, a chunker and a translation client, takes the
// per content tree lock and drives the sync, retranslate and commit
// workflows while printing progress and summaries for the operator.
package processor
