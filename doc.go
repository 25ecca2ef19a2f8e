// Package pooppdf captures a live web page into a paginated PDF using headless Chrome.
//
// # Quick Start
//
// Create a pipeline and run one capture request:
//
//	p := pooppdf.NewPipeline()
//
//	res, err := p.Run(ctx, pooppdf.CaptureRequest{
//	    URL:        "http://localhost:3000/dashboard/?print=1",
//	    OutputPath: "dashboard.pdf",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("written to", res.OutputPath)
//
// # Capture Pipeline
//
// Each run goes through these states:
//
//  1. Launching: start a fresh browser with one blank page
//  2. Navigating: load the URL
//  3. Awaiting readiness: network idle for 500ms, then the optional selector
//  4. Rendering: emulate screen media, print with the fixed layout, write the PDF
//  5. Closing: the browser is closed on success and on every failure
//
// The layout is fixed: 80px top and bottom margins, 0.8 scale and a 1080px
// page width. CaptureRequest.Title adds a centered header and
// CaptureRequest.ShowPageNumbers a "Page N of M" footer.
//
// # Configuration
//
// Use functional options to customize the pipeline:
//
//	engine, err := pooppdf.NewEngine(pooppdf.EngineChromedp, pooppdf.EngineConfig{NoSandbox: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p := pooppdf.NewPipeline(
//	    pooppdf.WithEngine(engine),
//	    pooppdf.WithTimeout(time.Minute),
//	    pooppdf.WithLogger(logger), // any logr.Logger
//	)
//
// # Output
//
// Local output paths are written atomically through a temporary file in the
// destination directory: a failed run never leaves a partial PDF and never
// replaces an existing one. Paths of the form s3://bucket/key are uploaded
// with the default AWS credential chain; S3_ENDPOINT_URL points the client
// at an S3-compatible endpoint.
//
// # Errors
//
// Errors wrap the sentinels in this package and can be checked with errors.Is:
// ErrNoURL, ErrInvalidURL, ErrInvalidOutput, ErrBrowserLaunch, ErrNavigation,
// ErrReadinessTimeout, ErrReadiness, ErrPDFGeneration and ErrWritePDF.
// Failures after launch are also wrapped in a *StageError naming the state.
//
// # Browser
//
// The rod engine (default) downloads Chromium on first use when no browser is
// installed. Both engines honor ROD_BROWSER_BIN for a custom binary and
// ROD_NO_SANDBOX=1 for containers.
package pooppdf
