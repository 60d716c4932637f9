// Package toolkit is the Go client for the Markup AI content platform.
//
// Content is submitted for asynchronous processing and the platform
// tracks each submission as a workflow. The client hides the
// submit-then-poll protocol behind synchronous calls:
//
//	client, err := toolkit.New(toolkit.Config{
//		PlatformURL: "https://api.markup.ai",
//		APIKey:      os.Getenv("MARKUPAI_API_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Rewrite(ctx, models.StyleAnalysisRequest{
//		Content: "The quick brown fox jmps over teh lazy dog.",
//		Dialect: "american_english",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.MergedText)
//
// Every resource family also exposes a Start/Get pair for callers that
// want to manage polling themselves. Errors are classified in
// pkg/apierr and matched with errors.Is; cancel the context to abort an
// in-flight request or wait.
package toolkit
