package scraping

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"hotelperf/server/internal/models"
)

// ScraperMessage is one line written by a scraper script on stdout
type ScraperMessage struct {
	Type string          `json:"type"` // "reviews", "complete" or "error"
	Data json.RawMessage `json:"data"`
}

type scrapedReview struct {
	Author    string     `json:"author"`
	Comment   string     `json:"comment"`
	Timestamp string     `json:"timestamp"`
	Rating    flexNumber `json:"rating"`
}

type completeMessage struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	TotalReviews int    `json:"total_reviews"`
}

type errorMessage struct {
	Message string `json:"message"`
}

// flexNumber accepts a JSON number or a numeric string; anything else reads as 0
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 {
		*f = 0
		return nil
	}
	*f = flexNumber(v)
	return nil
}

// messageHandler receives the decoded messages of one scraper run
type messageHandler struct {
	onReviews  func(reviews []models.IncomingReview)
	onComplete func(msg completeMessage)
	onError    func(msg errorMessage)
	onInvalid  func(line string, err error)
}

// readMessages decodes JSON lines from r until EOF. Lines that are not
// valid messages are reported and skipped.
func readMessages(r io.Reader, h messageHandler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var msg ScraperMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			h.onInvalid(line, err)
			continue
		}

		switch msg.Type {
		case "reviews":
			var scraped []scrapedReview
			if err := json.Unmarshal(msg.Data, &scraped); err != nil {
				h.onInvalid(line, fmt.Errorf("failed to parse reviews: %w", err))
				continue
			}
			reviews := make([]models.IncomingReview, 0, len(scraped))
			for _, s := range scraped {
				reviews = append(reviews, models.IncomingReview{
					Author:    s.Author,
					Comment:   s.Comment,
					Timestamp: s.Timestamp,
					Rating:    float64(s.Rating),
				})
			}
			h.onReviews(reviews)

		case "complete":
			var c completeMessage
			if err := json.Unmarshal(msg.Data, &c); err != nil {
				h.onInvalid(line, fmt.Errorf("failed to parse completion message: %w", err))
				continue
			}
			h.onComplete(c)

		case "error":
			var e errorMessage
			if err := json.Unmarshal(msg.Data, &e); err != nil {
				e.Message = strings.Trim(string(msg.Data), `"`)
			}
			h.onError(e)

		default:
			h.onInvalid(line, fmt.Errorf("unknown message type %q", msg.Type))
		}
	}
	return scanner.Err()
}
