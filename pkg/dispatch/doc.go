// Package dispatch sends one personalized email per recipient row through a paced,
// strictly sequential loop and reports progress as an ordered event stream.
//
// A job is described by Job: raw rows, a column Mapping, body and subject templates,
// optional extra template context and an AttachmentIndex keyed by normalized
// recipient name. Dispatcher.Run filters the rows once, then for each row renders the
// message, resolves its attachments, sends it through a mailer.Sender and emits an
// ItemEvent. Events are always emitted in the order
//
//	start, item(0), item(1), ..., item(total-1), done
//
// A failed send never aborts the batch; it is reported as an item with status "error".
// Template errors never fail an item either: the template text is sent unrendered
// (see mailer.RenderText).
//
// Between items the loop waits for Pacing.Wait, a base delay with uniform jitter.
// Cancelling the context stops the loop after the in-flight send; no done event is
// emitted in that case.
//
// StreamEncoder writes events as newline-delimited JSON and flushes each line:
//
//	dispatch.SetStreamHeaders(w.Header())
//	w.WriteHeader(http.StatusOK)
//	summary, err := d.Run(r.Context(), job, dispatch.NewStreamEncoder(w))
package dispatch
