package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/database"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/sentiment"
)

type reviewIdentity struct {
	author, comment, timestamp, hotelName, source string
}

type sourceCounts struct {
	inserted, duplicates, invalid int
}

// IngestBatch stores the new reviews of a batch and classifies each of them
// exactly once. Reviews already stored, or repeated inside the batch, are
// counted as duplicates; reviews without a comment are counted as invalid.
// The batch is written in a single transaction so a retried batch never
// leaves a review without its sentiment.
func (s *Service) IngestBatch(ctx context.Context, batch *models.ReviewBatch) (*models.IngestResult, error) {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}

	hotel, err := s.db.GetHotel(ctx, batch.HotelID)
	if err != nil {
		return nil, err
	}

	var (
		result *models.IngestResult
		counts map[string]*sourceCounts
		labels []sentiment.Label
	)

	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		result = &models.IngestResult{BatchID: batch.ID, Received: len(batch.Reviews)}
		counts = make(map[string]*sourceCounts)
		labels = labels[:0]
		seen := make(map[reviewIdentity]struct{}, len(batch.Reviews))

		for _, item := range batch.Reviews {
			source := item.Source
			if source == "" {
				source = batch.Source
			}
			c, ok := counts[source]
			if !ok {
				c = &sourceCounts{}
				counts[source] = c
			}

			if strings.TrimSpace(item.Comment) == "" || s.validate.Struct(item) != nil {
				result.Invalid++
				c.invalid++
				continue
			}

			id := reviewIdentity{item.Author, item.Comment, item.Timestamp, hotel.HotelName, source}
			if _, dup := seen[id]; dup {
				result.Duplicates++
				c.duplicates++
				continue
			}
			seen[id] = struct{}{}

			review := &models.Review{
				HotelID:   hotel.ID,
				HotelName: hotel.HotelName,
				Author:    item.Author,
				Comment:   item.Comment,
				Timestamp: item.Timestamp,
				Source:    source,
				Rating:    item.Rating,
			}
			inserted, err := tx.InsertReview(ctx, review)
			if err != nil {
				return fmt.Errorf("failed to insert review: %w", err)
			}
			if !inserted {
				result.Duplicates++
				c.duplicates++
				continue
			}

			classified := s.classifier.Classify(item.Comment)
			if err := tx.CreateSentiment(ctx, &models.Sentiment{
				ReviewID:      review.ID,
				Label:         string(classified.Label),
				PositiveScore: classified.PositiveScore,
				NegativeScore: classified.NegativeScore,
			}); err != nil {
				return fmt.Errorf("failed to store sentiment: %w", err)
			}
			labels = append(labels, classified.Label)
			result.Inserted++
			c.inserted++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest batch %s: %w", batch.ID, err)
	}

	for source, c := range counts {
		s.metrics.RecordIngest(source, c.inserted, c.duplicates, c.invalid)
	}
	for _, l := range labels {
		s.metrics.RecordSentiment(string(l))
	}
	if result.Inserted > 0 {
		s.invalidateReports()
	}

	s.logger.WithFields(logrus.Fields{
		"batch_id":   result.BatchID,
		"hotel_id":   hotel.ID,
		"received":   result.Received,
		"inserted":   result.Inserted,
		"duplicates": result.Duplicates,
		"invalid":    result.Invalid,
	}).Info("Ingested review batch")
	return result, nil
}

func (s *Service) ListReviews(ctx context.Context, hotelID uint, page, limit int) (*models.Page[models.Review], error) {
	if hotelID > 0 {
		if err := s.requireHotel(ctx, hotelID); err != nil {
			return nil, err
		}
	}

	page, limit = pageBounds(page, limit)
	reviews, total, err := s.db.ListReviews(ctx, hotelID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &models.Page[models.Review]{Data: reviews, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) ListSentiments(ctx context.Context) ([]models.Sentiment, error) {
	sentiments, err := s.db.ListSentiments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sentiments: %w", err)
	}
	if sentiments == nil {
		sentiments = []models.Sentiment{}
	}
	return sentiments, nil
}

// ReviewDiagram returns one-hot sentiment series of a hotel's reviews in
// timestamp order. Reviews without a sentiment count as neutral.
func (s *Service) ReviewDiagram(ctx context.Context, hotelID uint) (*models.ReviewSentimentDiagram, error) {
	if err := s.requireHotel(ctx, hotelID); err != nil {
		return nil, err
	}

	reviews, err := s.db.ReviewsByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return dateLess(reviews[i].Timestamp, reviews[j].Timestamp)
	})

	d := &models.ReviewSentimentDiagram{
		Dates:    make([]string, 0, len(reviews)),
		Ratings:  make([]float64, 0, len(reviews)),
		Positive: make([]int, 0, len(reviews)),
		Neutral:  make([]int, 0, len(reviews)),
		Negative: make([]int, 0, len(reviews)),
	}
	for _, r := range reviews {
		label := sentiment.Neutral
		if r.Sentiment != nil {
			label = sentiment.Label(r.Sentiment.Label)
		}

		d.Dates = append(d.Dates, r.Timestamp)
		d.Ratings = append(d.Ratings, r.Rating)
		d.Positive = append(d.Positive, oneHot(label == sentiment.Positive))
		d.Neutral = append(d.Neutral, oneHot(label != sentiment.Positive && label != sentiment.Negative))
		d.Negative = append(d.Negative, oneHot(label == sentiment.Negative))
	}
	return d, nil
}

func oneHot(b bool) int {
	if b {
		return 1
	}
	return 0
}
