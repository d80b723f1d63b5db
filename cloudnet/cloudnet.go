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

// Package cloudnet is a client for the Cloudnet data portal: it lists
// the measurement sites and submits model files to the portal.
package cloudnet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"

	munger "github.com/actris-cloudnet/model-munger"
	"github.com/actris-cloudnet/model-munger/internal/hash"
)

// DefaultURL is the data portal address used in development setups.
const DefaultURL = "http://localhost:3000"

// A Client talks to a Cloudnet data portal.
type Client struct {
	// URL is the base address of the data portal.
	URL string

	// Username and Password are the basic auth credentials for the
	// model-upload endpoints.
	Username, Password string

	// Model is the model identifier submitted with each file.
	Model string

	HTTPClient *http.Client
	Log        logrus.FieldLogger
}

// NewClient returns a Client with the development defaults.
func NewClient() *Client {
	return &Client{
		URL:        DefaultURL,
		Username:   "admin",
		Password:   "admin",
		Model:      "ecmwf-open",
		HTTPClient: http.DefaultClient,
		Log:        logrus.StandardLogger(),
	}
}

// site mirrors the data portal site JSON. Coordinates are pointers
// because the portal reports sites without a fixed location with
// null coordinates.
type site struct {
	ID        string   `json:"id"`
	Name      string   `json:"humanReadableName"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Sites returns the cloudnet measurement sites, excluding sites
// without coordinates.
func (c *Client) Sites(ctx context.Context) ([]munger.Site, error) {
	req, err := http.NewRequest("GET", c.URL+"/api/sites?type=cloudnet", nil)
	if err != nil {
		return nil, fmt.Errorf("cloudnet: listing sites: %v", err)
	}
	req = req.WithContext(ctx)
	var sites []site
	if err := c.do(req, func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(&sites)
	}); err != nil {
		return nil, fmt.Errorf("cloudnet: listing sites: %v", err)
	}
	var o []munger.Site
	for _, s := range sites {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		o = append(o, munger.Site{
			ID:       s.ID,
			Name:     s.Name,
			Location: geom.Point{X: *s.Longitude, Y: *s.Latitude},
		})
	}
	return o, nil
}

// metadata is the payload of the model-upload metadata endpoint.
type metadata struct {
	MeasurementDate string `json:"measurementDate"`
	Model           string `json:"model"`
	Filename        string `json:"filename"`
	Checksum        string `json:"checksum"`
	Site            string `json:"site"`
}

// errAlreadySubmitted signals that the portal already has a file with
// the same checksum. Submission is idempotent, so it is not treated as
// an error.
var errAlreadySubmitted = fmt.Errorf("cloudnet: file already submitted")

// Submit uploads a model file for a site and measurement date: it
// registers the file metadata (including an MD5 checksum) and then
// uploads the file body. A file the portal already knows about is
// silently skipped.
func (c *Client) Submit(ctx context.Context, path string, s munger.Site, date time.Time) error {
	c.Log.WithFields(logrus.Fields{"file": path, "site": s.ID}).Info("Submitting")

	checksum, err := hash.MD5File(path)
	if err != nil {
		return fmt.Errorf("cloudnet: submitting %s: %v", path, err)
	}

	body, err := json.Marshal(metadata{
		MeasurementDate: date.Format("2006-01-02"),
		Model:           c.Model,
		Filename:        filepath.Base(path),
		Checksum:        checksum,
		Site:            s.ID,
	})
	if err != nil {
		return fmt.Errorf("cloudnet: submitting %s: %v", path, err)
	}

	req, err := http.NewRequest("POST", c.URL+"/model-upload/metadata/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cloudnet: submitting %s: %v", path, err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.Username, c.Password)
	err = c.do(req, nil)
	if err == errAlreadySubmitted {
		c.Log.WithField("file", path).Info("Already submitted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("cloudnet: submitting metadata for %s: %v", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cloudnet: submitting %s: %v", path, err)
	}
	defer f.Close()
	req, err = http.NewRequest("PUT", c.URL+"/model-upload/data/"+checksum, f)
	if err != nil {
		return fmt.Errorf("cloudnet: submitting %s: %v", path, err)
	}
	req = req.WithContext(ctx)
	req.SetBasicAuth(c.Username, c.Password)
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("cloudnet: uploading %s: %v", path, err)
	}
	return nil
}

// do performs a request, retrying server errors with exponential
// backoff, and passes a successful response to handle. Requests with
// a non-rewindable body are not retried.
func (c *Client) do(req *http.Request, handle func(*http.Response) error) error {
	op := func() error {
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Body = body
		}
		// A request whose body cannot be rewound cannot be retried.
		retryable := req.Body == nil || req.GetBody != nil
		permanent := func(err error) error {
			if retryable {
				return err
			}
			return backoff.Permanent(err)
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return permanent(err)
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusConflict:
			return backoff.Permanent(errAlreadySubmitted)
		case resp.StatusCode >= 500:
			return permanent(fmt.Errorf("%s %s: HTTP %d", req.Method, req.URL, resp.StatusCode))
		case resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("%s %s: HTTP %d", req.Method, req.URL, resp.StatusCode))
		}
		if handle != nil {
			if err := handle(resp); err != nil {
				return backoff.Permanent(err)
			}
		}
		return nil
	}
	return backoff.RetryNotify(op, backoff.NewExponentialBackOff(),
		func(err error, d time.Duration) {
			c.Log.Warnf("%v: retrying in %v", err, d)
		})
}
