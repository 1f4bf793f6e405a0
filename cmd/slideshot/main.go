// Package main provides the entry point for the slideshot CLI.
//
// slideshot renders a local HTML slide in headless Chromium, saves a PNG
// screenshot and reports words that overflow the slide canvas, are clipped
// by their containers or overlap each other.
//
// Usage:
//
//	slideshot deck/intro.html
//	slideshot deck/intro.html --report layout.json --fail-on-warnings
//
// See --help for all available options.
package main

func main() {
	Execute()
}
