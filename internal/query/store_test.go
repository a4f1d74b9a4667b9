package query

import (
	"errors"
	"sort"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
)

// memSource is an in-memory RecordSource for tests.
type memSource struct {
	records map[string]*models.DailyRecord
	err     error
	fetches int
}

func newMemSource(records ...*models.DailyRecord) *memSource {
	s := &memSource{records: make(map[string]*models.DailyRecord)}
	for _, r := range records {
		s.records[r.DateString()] = r
	}
	return s
}

func (s *memSource) sorted() []*models.DailyRecord {
	out := make([]*models.DailyRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (s *memSource) Latest() (*models.DailyRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	all := s.sorted()
	if len(all) == 0 {
		return nil, nil
	}
	return all[len(all)-1], nil
}

func (s *memSource) Fetch(start, end time.Time) ([]*models.DailyRecord, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.DailyRecord
	for _, r := range s.sorted() {
		if !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memSource) Exists(date time.Time) (bool, error) {
	_, ok := s.records[models.FormatDate(date)]
	return ok, s.err
}

// reversedSource returns Fetch results newest first.
type reversedSource struct{ *memSource }

func (s reversedSource) Fetch(start, end time.Time) ([]*models.DailyRecord, error) {
	recs, err := s.memSource.Fetch(start, end)
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, err
}

var errStoreDown = errors.New("store unavailable")

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func record(date string, values map[models.MetricID]float64) *models.DailyRecord {
	r := models.NewDailyRecord(day(date))
	for id, v := range values {
		r.WithValue(id, v)
	}
	return r
}
