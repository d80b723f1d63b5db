/*
Copyright © 2024 the model-munger authors.
This file is part of model-munger.

model-munger is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

model-munger is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with model-munger.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package ecmwf downloads ECMWF open-data high-resolution forecast
// files in GRIB2 format.
package ecmwf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// DefaultRoot is the root URL of the ECMWF open-data dissemination.
const DefaultRoot = "https://data.ecmwf.int/forecasts"

// A Run identifies one forecast run of the ECMWF high-resolution
// forecast (open data subset).
type Run struct {
	// Date is the forecast date (UTC).
	Date time.Time

	// Hour is the run hour: 0, 6, 12 or 18 UTC.
	Hour int
}

// Valid reports whether the run hour is one of the four daily runs.
func (r Run) Valid() bool {
	return r.Hour == 0 || r.Hour == 6 || r.Hour == 12 || r.Hour == 18
}

// Stream returns the dissemination stream of the run: "oper" for the
// 00 and 12 UTC runs and "scda" for the 06 and 18 UTC runs.
func (r Run) Stream() string {
	if r.Hour == 0 || r.Hour == 12 {
		return "oper"
	}
	return "scda"
}

// Steps returns the forecast steps to fetch [hours]: from the run
// hour to 24 in 3-hour increments.
func (r Run) Steps() []int {
	var o []int
	for h := r.Hour; h <= 24; h += 3 {
		o = append(o, h)
	}
	return o
}

// FileName returns the name of the GRIB2 file for a forecast step.
func (r Run) FileName(step int) string {
	return fmt.Sprintf("%s%02d0000-%dh-%s-fc.grib2", r.Date.Format("20060102"), r.Hour, step, r.Stream())
}

// IndexName returns the name of the index sidecar of a forecast step.
func (r Run) IndexName(step int) string {
	return fmt.Sprintf("%s%02d0000-%dh-%s-fc.index", r.Date.Format("20060102"), r.Hour, step, r.Stream())
}

// A Client downloads forecast files from the ECMWF open-data servers.
// The zero value is not usable; use NewClient.
type Client struct {
	// Root is the root URL of the dissemination server.
	Root string

	// HTTPClient is the client used for requests.
	HTTPClient *http.Client

	Log logrus.FieldLogger

	indexes *indexCache
}

// NewClient returns a Client for the default open-data server.
func NewClient() *Client {
	c := &Client{
		Root:       DefaultRoot,
		HTTPClient: http.DefaultClient,
		Log:        logrus.StandardLogger(),
	}
	c.indexes = newIndexCache(c)
	return c
}

func (c *Client) url(run Run, name string) string {
	return fmt.Sprintf("%s/%s/%02dz/ifs/0p25/%s/%s", c.Root, run.Date.Format("20060102"), run.Hour, run.Stream(), name)
}

// Download fetches the GRIB2 files of all forecast steps of a run
// into dir and returns their paths in step order. Files that already
// exist locally are not fetched again.
func (c *Client) Download(ctx context.Context, run Run, dir string) ([]string, error) {
	if !run.Valid() {
		return nil, fmt.Errorf("ecmwf: invalid run hour %d", run.Hour)
	}
	var paths []string
	for _, step := range run.Steps() {
		name := run.FileName(step)
		path := filepath.Join(dir, name)
		paths = append(paths, path)
		if _, err := os.Stat(path); err == nil {
			c.Log.WithField("file", path).Info("Already downloaded")
			continue
		}
		if err := c.download(ctx, c.url(run, name), path, nil); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// download fetches url to path through a temporary file so that an
// interrupted transfer is not mistaken for a completed one. If ranges
// is non-nil, only the given byte ranges are fetched, concatenated in
// order.
func (c *Client) download(ctx context.Context, url, path string, ranges []byteRange) error {
	tmp := path + ".part"
	op := func() error {
		w, err := os.Create(tmp)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating %s: %v", tmp, err))
		}
		defer w.Close()
		if ranges == nil {
			err = c.fetch(ctx, url, w, nil)
		} else {
			for _, br := range ranges {
				if err = c.fetch(ctx, url, w, &br); err != nil {
					break
				}
			}
		}
		if err != nil {
			return err
		}
		return w.Close()
	}
	err := backoff.RetryNotify(op, backoff.NewExponentialBackOff(),
		func(err error, d time.Duration) {
			c.Log.Warnf("%v: retrying in %v", err, d)
		})
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ecmwf: downloading %s: %v", url, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("ecmwf: downloading %s: %v", url, err)
	}
	return nil
}

// byteRange is a half-open byte range [offset, offset+length) within
// a remote file.
type byteRange struct {
	offset, length int64
}

// fetch performs one GET request, writing the body to w. With a
// byte range, a Range header is sent and a partial content response
// is required.
func (c *Client) fetch(ctx context.Context, url string, w io.Writer, br *byteRange) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req = req.WithContext(ctx)
	wantStatus := http.StatusOK
	if br != nil {
		// The range is inclusive.
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", br.offset, br.offset+br.length-1))
		wantStatus = http.StatusPartialContent
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		err := fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(err)
		}
		return err
	}
	pr := &progressReader{r: resp.Body, total: resp.ContentLength, url: url, log: c.Log}
	if _, err := io.Copy(w, pr); err != nil {
		return err
	}
	return nil
}

// progressReader logs download progress in 25% increments.
type progressReader struct {
	r       io.Reader
	total   int64
	read    int64
	lastPct int
	url     string
	log     logrus.FieldLogger
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		if pct := int(100 * p.read / p.total); pct >= p.lastPct+25 {
			p.lastPct = pct - pct%25
			p.log.WithFields(logrus.Fields{"url": p.url, "percent": pct}).Info("Downloading")
		}
	}
	return n, err
}
