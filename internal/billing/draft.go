package billing

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"billing/internal/money"
	"billing/internal/timeutil"
	"billing/internal/validation"
	"billing/pkg/models"
)

// Draft is a document being assembled. It has no number or id until it is
// finalized.
type Draft struct {
	Kind     models.Kind          `json:"kind"`
	Date     string               `json:"date"`
	Client   models.Client        `json:"client"`
	Items    []models.LineItem    `json:"items"`
	GSTRate  string               `json:"gst_rate"`
	HideGST  bool                 `json:"hide_gst"`
	Schedule []models.ScheduleRow `json:"schedule,omitempty"`
	Terms    string               `json:"terms"`
}

// NewDraft returns an empty draft dated today.
func NewDraft(kind models.Kind, gstKey, terms string) *Draft {
	if gstKey == "" {
		gstKey = money.DefaultGSTKey
	}
	if terms == "" {
		terms = models.DefaultTerms
	}
	return &Draft{
		Kind:    kind,
		Date:    timeutil.FormatDate(timeutil.Today()),
		GSTRate: gstKey,
		Terms:   terms,
	}
}

// DraftFrom copies the editable fields of doc into a new draft of kind.
func DraftFrom(doc *models.Document, kind models.Kind) *Draft {
	c := doc.Clone()
	return &Draft{
		Kind:     kind,
		Date:     c.Date,
		Client:   c.Client,
		Items:    c.Items,
		GSTRate:  c.GSTRate,
		HideGST:  c.HideGST,
		Schedule: c.Schedule,
		Terms:    c.Terms,
	}
}

// AddItem validates item and appends it.
func (d *Draft) AddItem(item models.LineItem) error {
	item.Description = strings.TrimSpace(item.Description)
	if err := validation.Struct(item); err != nil {
		return err
	}
	d.Items = append(d.Items, item)
	return nil
}

// RemoveItem drops the item at index i.
func (d *Draft) RemoveItem(i int) error {
	if i < 0 || i >= len(d.Items) {
		return fmt.Errorf("%w: %d of %d", ErrItemIndex, i, len(d.Items))
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	return nil
}

// ClearItems empties the item list.
func (d *Draft) ClearItems() {
	d.Items = nil
}

// Totals returns calculator output for the current items.
func (d *Draft) Totals() money.Totals {
	return money.Compute(d.Items, d.GSTRate, d.HideGST)
}

// document builds the unsaved document for d with amounts frozen.
func (d *Draft) document(id, number string) models.Document {
	t := d.Totals()
	doc := models.Document{
		ID:         id,
		DocumentNo: number,
		Kind:       d.Kind,
		Date:       strings.TrimSpace(d.Date),
		Client: models.Client{
			Name:    strings.TrimSpace(d.Client.Name),
			Phone:   strings.TrimSpace(d.Client.Phone),
			Address: strings.TrimSpace(d.Client.Address),
		},
		Items:    append([]models.LineItem(nil), d.Items...),
		GSTRate:  d.GSTRate,
		HideGST:  d.HideGST,
		Schedule: nil,
		Terms:    d.Terms,
		Amount:   t.GrandTotal,
		Tax:      t.Tax,
	}
	for _, r := range d.Schedule {
		if !r.IsBlank() {
			doc.Schedule = append(doc.Schedule, r)
		}
	}
	if d.Kind == models.KindFinalBill {
		doc.Status = models.StatusPending
	}
	return doc
}

// LoadDraft reads a draft saved with SaveDraft.
func LoadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", path, err)
	}
	return &d, nil
}

// SaveDraft writes d as indented JSON.
func SaveDraft(path string, d *Draft) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}
