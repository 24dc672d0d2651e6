// Package jservice is a typed client for the jservice clue API. Raw JSON
// never leaves this package; callers only see Record and Category values.
package jservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const requestTimeout = 5 * time.Second

// Record is one clue as served by the source.
type Record struct {
	ID           int        `json:"id"`
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	Airdate      string     `json:"airdate"`
	Value        PointValue `json:"value"`
	InvalidCount int        `json:"invalid_count"`
	Category     Category   `json:"category"`
}

// PointValue is the clue's dollar value. The source serves null, numbers and
// the occasional quoted number; anything unusable decodes to zero so callers
// can substitute their default.
type PointValue int

func (p *PointValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*p = 0
		return nil
	}
	*p = PointValue(n)
	return nil
}

// Category is a clue category with its total clue count.
type Category struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	CluesCount int    `json:"clues_count"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Random fetches a batch of random clues. count <= 0 requests the source
// default batch size.
func (c *Client) Random(ctx context.Context, count int) ([]Record, error) {
	u := c.baseURL + "/api/random"
	if count > 0 {
		u += "?count=" + strconv.Itoa(count)
	}
	var records []Record
	if err := c.getJSON(ctx, u, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CluesByCategory fetches one page of a category's clues starting at offset.
func (c *Client) CluesByCategory(ctx context.Context, categoryID, offset int) ([]Record, error) {
	u := fmt.Sprintf("%s/api/clues?category=%d", c.baseURL, categoryID)
	if offset > 0 {
		u += "&offset=" + strconv.Itoa(offset)
	}
	var records []Record
	if err := c.getJSON(ctx, u, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Categories fetches a page of the category listing.
func (c *Client) Categories(ctx context.Context, count, offset int) ([]Category, error) {
	u := fmt.Sprintf("%s/api/categories?count=%d&offset=%d", c.baseURL, count, offset)
	var categories []Category
	if err := c.getJSON(ctx, u, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ReportInvalid flags a clue as unanswerable upstream.
func (c *Client) ReportInvalid(ctx context.Context, clueID int) error {
	form := url.Values{"id": {strconv.Itoa(clueID)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/invalid", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("report invalid: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
