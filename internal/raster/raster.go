// Package raster is the boundary adapter for "PNG rasterization and
// debug-visualisation side-outputs" (spec §6): the core never produces SVG
// or raster bytes itself, so this package only accepts SVG a caller already
// rendered and turns it into a PNG, optionally stamped with an EXIF
// provenance chunk. Grounded on the teacher's lib/png (headless Chromium via
// github.com/playwright-community/playwright-go, EXIF embedding via
// github.com/dsoprea/go-exif/v3 and github.com/dsoprea/go-png-image-structure/v2),
// trimmed to the pieces that don't assume a D2-specific SVG document.
package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	pngstruct "github.com/dsoprea/go-png-image-structure/v2"
	"github.com/playwright-community/playwright-go"

	"github.com/ndlayout/engine/internal/svgimg"
)

// DeviceScale is the screenshot supersampling factor (spec's rasteriser has
// no resolution requirement of its own; 2x matches common "retina" output).
const DeviceScale = 2.0

// Session wraps a single headless Chromium instance used to rasterise SVG
// into PNG. Callers own its lifetime; Close releases the browser and the
// Playwright driver together.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewSession installs (if needed) and launches headless Chromium.
func NewSession() (*Session, error) {
	if err := playwright.Install(&playwright.RunOptions{Verbose: false, Browsers: []string{"chromium"}}); err != nil {
		return nil, fmt.Errorf("raster: install chromium: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("raster: start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-background-timer-throttling",
			"--disable-backgrounding-occluded-windows",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("raster: launch chromium: %w", err)
	}
	return &Session{pw: pw, browser: browser}, nil
}

// Close shuts down the browser and the Playwright driver.
func (s *Session) Close() error {
	if err := s.browser.Close(); err != nil {
		return fmt.Errorf("raster: close browser: %w", err)
	}
	return s.pw.Stop()
}

// ConvertSVG mounts caller-supplied SVG bytes in a blank page and
// screenshots the single top-level <svg> element, returning PNG bytes.
// Embedded-image decompression (internal/svgimg) runs first so Chromium
// doesn't stall waiting on a compressed <image> it can't decode itself.
func (s *Session) ConvertSVG(svg []byte) ([]byte, error) {
	decompressed := svgimg.UnzipEmbeddedSVGImages(svg)

	ctx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{DeviceScaleFactor: playwright.Float(DeviceScale)})
	if err != nil {
		return nil, fmt.Errorf("raster: new context: %w", err)
	}
	defer ctx.Close()

	page, err := ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("raster: new page: %w", err)
	}
	defer page.Close()

	html := `<!doctype html><meta charset="utf-8">` +
		`<style>html,body{margin:0;background:#fff}#stage{display:inline-block}</style>` +
		`<div id="stage">` + string(decompressed) + `</div>`
	if _, err := page.Goto("data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))); err != nil {
		return nil, fmt.Errorf("raster: load svg: %w", err)
	}
	if err := page.Locator("svg").First().WaitFor(); err != nil {
		return nil, fmt.Errorf("raster: wait for svg: %w", err)
	}

	png, err := page.Locator("svg").First().Screenshot()
	if err != nil {
		return nil, fmt.Errorf("raster: screenshot: %w", err)
	}
	return png, nil
}

// AddProvenance stamps a PNG with an EXIF chunk naming the engine and the
// caller-supplied build version, for round-tripping a rendered diagram back
// to the run that produced it.
func AddProvenance(png []byte, buildVersion string) ([]byte, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("raster: ifd mapping: %w", err)
	}
	ti := exif.NewTagIndex()
	ib := exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.TestDefaultByteOrder)

	if err := ib.AddStandardWithName("Make", "ndlayout"); err != nil {
		return nil, fmt.Errorf("raster: exif make: %w", err)
	}
	if err := ib.AddStandardWithName("Model", buildVersion); err != nil {
		return nil, fmt.Errorf("raster: exif model: %w", err)
	}

	pmp := pngstruct.NewPngMediaParser()
	intfc, err := pmp.ParseBytes(png)
	if err != nil {
		return nil, fmt.Errorf("raster: parse png: %w", err)
	}
	cs := intfc.(*pngstruct.ChunkSlice)
	if err := cs.SetExif(ib); err != nil {
		return nil, fmt.Errorf("raster: set exif: %w", err)
	}

	var b bytes.Buffer
	if err := cs.WriteTo(&b); err != nil {
		return nil, fmt.Errorf("raster: write png: %w", err)
	}
	return b.Bytes(), nil
}
