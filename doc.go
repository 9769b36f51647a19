// Package mailcast is a batch email dispatch service.
//
// A dispatch job takes tabular recipient rows, a body template and optional
// attachments. Each row with a recipient becomes one personalized email, sent
// one at a time with a jittered pause between sends, while progress is streamed
// back as newline-delimited JSON (NDJSON): one start event, one item event per
// recipient, and one done event.
//
// This package re-exports the HTTP application core. The dispatch engine lives in
// pkg/dispatch, mail transports in pkg/mailer/smtp and pkg/mailer/resend.
//
// # Quick Start
//
//	sender, err := smtp.New(smtp.Config{
//	    SenderEmail: "events@example.com",
//	    Password:    os.Getenv("SENDER_PASSWORD"),
//	})
//	if err != nil {
//	    return err
//	}
//
//	d := dispatch.New(sender, dispatch.Config{}, dispatch.WithLogger(log))
//
//	app := mailcast.New(
//	    mailcast.WithLogger(log),
//	    mailcast.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Logging(),
//	        middlewares.Recover(),
//	    ),
//	    mailcast.WithErrorHandler(handlers.ErrorHandler),
//	    mailcast.WithHandlers(handlers.NewDispatch(d)),
//	    mailcast.WithHealthChecks(
//	        mailcast.WithReadinessCheck("smtp", sender.Healthcheck),
//	    ),
//	)
//
//	if err := app.Run(":8080", mailcast.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Progress stream
//
// POST /api/dispatch answers 200 with Content-Type application/x-ndjson and
// writes one JSON object per line, flushed as soon as it is produced:
//
//	{"type":"start","total":2}
//	{"type":"item","to":"a@x.io","status":"sent","messageId":"<...>","subject":"Hi","timestamp":"...","index":0,"attachments":0}
//	{"type":"item","to":"b@x.io","status":"error","error":"...","subject":"Hi","timestamp":"...","index":1,"attachments":0}
//	{"type":"done","sent":1,"failed":1}
//
// A failed send never stops the batch. Request errors (malformed JSON, missing
// required fields, no configured sender) are reported with a regular JSON error
// response before the stream starts.
//
// # Command line
//
// cmd/mailcast serves the HTTP API ("serve") or runs one job from local files
// ("send"), writing the same NDJSON stream to stdout.
package mailcast
