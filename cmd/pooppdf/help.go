package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message with examples.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pooppdf [options] <url>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a PDF of a webpage using Chrome in headless mode.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -s, --selector <selector>     Query selector for an element whose existence in the DOM")
	fmt.Fprintln(w, "                                is checked prior to generating the PDF")
	fmt.Fprintln(w, "  -p, --path <path>             File path or s3://bucket/key to save the PDF to; relative")
	fmt.Fprintln(w, "                                paths resolve against the current directory (default: output.pdf)")
	fmt.Fprintln(w, "  -t, --title <title>           Title to show in the header of every page")
	fmt.Fprintln(w, "  -n, --page-numbers            Show page numbers in the footer")
	fmt.Fprintln(w, "  -l, --enable-logging [path]   Enable logging, optionally to the given file")
	fmt.Fprintln(w, "                                (default: pooppdf.log)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --timeout <duration>      Capture timeout (default: 30s)")
	fmt.Fprintln(w, "      --engine <name>           Browser engine: rod, chromedp (default: rod)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -c, --config <name>           Config file name or path")
	fmt.Fprintln(w, "      --verbose                 Print log events to stderr")
	fmt.Fprintln(w, "  -v, --version                 Print version")
	fmt.Fprintln(w, "  -h, --help                    Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  POOPPDF_CONFIG, POOPPDF_TIMEOUT, POOPPDF_ENGINE   Defaults below flags, above the config file")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN, ROD_NO_SANDBOX                   Chrome binary and sandbox")
	fmt.Fprintln(w, "  S3_ENDPOINT_URL, AWS_REGION, AWS_*               S3 output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `  $ pooppdf "http://localhost:3000/dashboard/?print=1&token=f8s3h482s"`)
	fmt.Fprintln(w, `  $ pooppdf --selector "div.header" "http://localhost:3000/dashboard/?print=1&token=f8s3h482s"`)
	fmt.Fprintln(w, `  $ pooppdf --selector "div.header" --path dashboard.pdf "http://localhost:3000/dashboard/?print=1&token=f8s3h482s"`)
	fmt.Fprintln(w, `  $ pooppdf --selector "div.header" --path dashboard.pdf "http://localhost:3000/dashboard/?print=1&token=f8s3h482s" -n -t "Dashboard"`)
	fmt.Fprintln(w, `  $ pooppdf --selector "div.header" --path dashboard.pdf "http://localhost:3000/dashboard/?print=1&token=f8s3h482s" -n -t "Dashboard" -l ../Documents/pooppdf.log`)
	fmt.Fprintln(w, `  $ pooppdf --path s3://reports/dashboard.pdf "http://localhost:3000/dashboard/?print=1"`)
}
