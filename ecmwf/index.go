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

package ecmwf

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/requestcache"
)

// An IndexEntry describes one GRIB2 message in an ECMWF open-data
// index sidecar file.
type IndexEntry struct {
	Param    string `json:"param"`
	Levtype  string `json:"levtype"`
	Levelist string `json:"levelist"`
	Step     string `json:"step"`

	// Offset and Length give the byte extent of the message within
	// the GRIB2 file.
	Offset int64 `json:"_offset"`
	Length int64 `json:"_length"`
}

// ParseIndex parses an index sidecar: one JSON document per line.
func ParseIndex(r io.Reader) ([]IndexEntry, error) {
	var entries []IndexEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e IndexEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("ecmwf: parsing index record %d: %v", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ecmwf: reading index: %v", err)
	}
	return entries, nil
}

// indexCache deduplicates and caches index fetches within a process,
// so that repeated subset downloads of the same run do not refetch
// the sidecars.
type indexCache struct {
	cache *requestcache.Cache
}

func newIndexCache(c *Client) *indexCache {
	return &indexCache{
		cache: requestcache.NewCache(c.fetchIndex, 1,
			requestcache.Deduplicate(), requestcache.Memory(100)),
	}
}

func (c *Client) fetchIndex(ctx context.Context, payload interface{}) (interface{}, error) {
	url := payload.(string)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}
	return ParseIndex(resp.Body)
}

// Index fetches the index of one forecast step of a run. Results are
// cached for the lifetime of the client.
func (c *Client) Index(ctx context.Context, run Run, step int) ([]IndexEntry, error) {
	url := c.url(run, run.IndexName(step))
	result, err := c.indexes.cache.NewRequest(ctx, url, url).Result()
	if err != nil {
		return nil, fmt.Errorf("ecmwf: fetching index %s: %v", url, err)
	}
	return result.([]IndexEntry), nil
}

// DownloadSubset fetches only the messages of the given parameters
// (all levels) for all forecast steps of a run, using the index
// sidecars and HTTP range requests, and returns the paths of the
// written GRIB2 files in step order. Files that already exist locally
// are not fetched again. Steps whose index sidecar cannot be fetched
// are downloaded in full.
func (c *Client) DownloadSubset(ctx context.Context, run Run, params []string, dir string) ([]string, error) {
	if !run.Valid() {
		return nil, fmt.Errorf("ecmwf: invalid run hour %d", run.Hour)
	}
	wanted := make(map[string]struct{})
	for _, p := range params {
		wanted[p] = struct{}{}
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
		entries, err := c.Index(ctx, run, step)
		if err != nil {
			// Index sidecars lag behind the forecast files on the
			// dissemination server; fetch the whole file instead.
			c.Log.Warnf("%v: falling back to a full download", err)
			if err := c.download(ctx, c.url(run, name), path, nil); err != nil {
				return nil, err
			}
			continue
		}
		var ranges []byteRange
		for _, e := range entries {
			if _, ok := wanted[e.Param]; ok {
				ranges = append(ranges, byteRange{offset: e.Offset, length: e.Length})
			}
		}
		if len(ranges) == 0 {
			return nil, fmt.Errorf("ecmwf: no messages matching %v in index of %s", params, name)
		}
		if err := c.download(ctx, c.url(run, name), path, ranges); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
