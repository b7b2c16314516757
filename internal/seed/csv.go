// Package seed reads the demo CSV files shipped in data/.
//
// Every file has a header row; columns are looked up by name so extra
// columns are ignored. Missing optional columns take the same defaults the
// API applies to new records.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"journeylens/internal/insight"
	"journeylens/internal/model"
)

// Files names the four demo inputs. Expected is optional.
type Files struct {
	Accounts     string
	Contacts     string
	Interactions string
	Expected     string
}

type row map[string]string

func (r row) str(key, fallback string) string {
	if v, ok := r[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (r row) id(key string) (int64, error) {
	v := strings.TrimSpace(r[key])
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", key, err)
	}
	return n, nil
}

func (r row) optionalID(key string) (*int64, error) {
	if strings.TrimSpace(r[key]) == "" {
		return nil, nil
	}
	n, err := r.id(key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// timestamp parses ISO-8601 timestamps. Blank or unparseable values become now.
func (r row) timestamp(key string, now time.Time) time.Time {
	v := strings.TrimSpace(r[key])
	if v == "" {
		return now
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return now
}

func readRows(path string, each func(line int, r row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return parseRows(f, each)
}

func parseRows(src io.Reader, each func(line int, r row) error) error {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		r := make(row, len(header))
		for i, name := range header {
			if i < len(record) {
				r[name] = record[i]
			}
		}
		if err := each(line, r); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func LoadAccounts(path string) ([]*model.Account, error) {
	now := time.Now().UTC()
	var out []*model.Account
	err := readRows(path, func(_ int, r row) error {
		id, err := r.id("id")
		if err != nil {
			return err
		}
		out = append(out, &model.Account{
			ID:        id,
			Name:      r.str("name", ""),
			Industry:  r.str("industry", ""),
			Status:    r.str("status", model.AccountStatusActive),
			CreatedAt: r.timestamp("created_at", now),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load accounts %s: %w", path, err)
	}
	return out, nil
}

func LoadContacts(path string) ([]*model.Contact, error) {
	now := time.Now().UTC()
	var out []*model.Contact
	err := readRows(path, func(_ int, r row) error {
		id, err := r.id("id")
		if err != nil {
			return err
		}
		accountID, err := r.id("account_id")
		if err != nil {
			return err
		}
		out = append(out, &model.Contact{
			ID:        id,
			AccountID: accountID,
			Name:      r.str("name", ""),
			Email:     r.str("email", ""),
			Role:      r.str("role", ""),
			CreatedAt: r.timestamp("created_at", now),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load contacts %s: %w", path, err)
	}
	return out, nil
}

func LoadInteractions(path string) ([]*model.Interaction, error) {
	now := time.Now().UTC()
	var out []*model.Interaction
	err := readRows(path, func(_ int, r row) error {
		id, err := r.id("id")
		if err != nil {
			return err
		}
		accountID, err := r.id("account_id")
		if err != nil {
			return err
		}
		contactID, err := r.optionalID("contact_id")
		if err != nil {
			return err
		}
		out = append(out, &model.Interaction{
			ID:        id,
			AccountID: accountID,
			ContactID: contactID,
			Channel:   r.str("channel", model.DefaultChannel),
			Content:   r.str("content", ""),
			Timestamp: r.timestamp("timestamp", now),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load interactions %s: %w", path, err)
	}
	return out, nil
}

// LoadExpected reads ground-truth labels keyed by interaction id. A missing
// file yields an empty table.
func LoadExpected(path string) (map[int64]insight.Expected, error) {
	out := make(map[int64]insight.Expected)
	if path == "" {
		return out, nil
	}
	err := readRows(path, func(_ int, r row) error {
		id, err := r.id("interaction_id")
		if err != nil {
			return err
		}
		risk := 0.5
		if v := strings.TrimSpace(r["expected_risk_score"]); v != "" {
			if risk, err = strconv.ParseFloat(v, 64); err != nil {
				return fmt.Errorf("column expected_risk_score: %w", err)
			}
		}
		out[id] = insight.Expected{
			Intent:    r.str("expected_intent", insight.IntentSupportRequest),
			Sentiment: r.str("expected_sentiment", insight.SentimentNeutral),
			RiskScore: risk,
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load expected insights %s: %w", path, err)
	}
	return out, nil
}
