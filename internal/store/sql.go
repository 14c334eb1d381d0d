package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"billing/pkg/models"
)

type documentRow struct {
	ID         string      `gorm:"primaryKey"`
	Position   int         `gorm:"index"`
	Kind       models.Kind `gorm:"index;size:16"`
	DocumentNo string      `gorm:"index"`
	Date       string

	Client   models.Client        `gorm:"serializer:json;type:text"`
	Items    []models.LineItem    `gorm:"serializer:json;type:text"`
	Schedule []models.ScheduleRow `gorm:"serializer:json;type:text"`

	GSTRate string
	HideGST bool
	Terms   string
	Status  models.Status

	Amount decimal.Decimal `gorm:"type:text"`
	Tax    decimal.Decimal `gorm:"type:text"`
}

func (documentRow) TableName() string { return "documents" }

type paymentRow struct {
	ID          string          `gorm:"primaryKey"`
	Position    int             `gorm:"index"`
	InvoiceID   string          `gorm:"index"`
	Amount      decimal.Decimal `gorm:"type:text"`
	Date        string
	Mode        models.PaymentMode
	ClientName  string
	InvoiceDate string
}

func (paymentRow) TableName() string { return "payments" }

func toDocumentRow(d models.Document, pos int) documentRow {
	return documentRow{
		ID:         d.ID,
		Position:   pos,
		Kind:       d.Kind,
		DocumentNo: d.DocumentNo,
		Date:       d.Date,
		Client:     d.Client,
		Items:      d.Items,
		Schedule:   d.Schedule,
		GSTRate:    d.GSTRate,
		HideGST:    d.HideGST,
		Terms:      d.Terms,
		Status:     d.Status,
		Amount:     d.Amount,
		Tax:        d.Tax,
	}
}

func (r documentRow) document() models.Document {
	items := r.Items
	if items == nil {
		items = []models.LineItem{}
	}
	return models.Document{
		ID:         r.ID,
		DocumentNo: r.DocumentNo,
		Kind:       r.Kind,
		Date:       r.Date,
		Client:     r.Client,
		Items:      items,
		GSTRate:    r.GSTRate,
		HideGST:    r.HideGST,
		Schedule:   r.Schedule,
		Terms:      r.Terms,
		Status:     r.Status,
		Amount:     r.Amount,
		Tax:        r.Tax,
	}
}

// SQLStore keeps the snapshot in a SQLite database, one row per document and
// per payment.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (creating if needed) the SQLite database at path and
// migrates its schema.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := db.AutoMigrate(&documentRow{}, &paymentRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}

	return &SQLStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load reads every row back in stored order.
func (s *SQLStore) Load(ctx context.Context) (*models.Records, error) {
	db := s.db.WithContext(ctx)

	var docs []documentRow
	if err := db.Order("position").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	var pays []paymentRow
	if err := db.Order("position").Find(&pays).Error; err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	records := models.NewRecords()
	for _, r := range docs {
		switch r.Kind {
		case models.KindFinalBill:
			records.Invoices = append(records.Invoices, r.document())
		default:
			records.Quotations = append(records.Quotations, r.document())
		}
	}
	for _, p := range pays {
		records.Payments = append(records.Payments, models.Payment{
			ID:          p.ID,
			InvoiceID:   p.InvoiceID,
			Amount:      p.Amount,
			Date:        p.Date,
			Mode:        p.Mode,
			ClientName:  p.ClientName,
			InvoiceDate: p.InvoiceDate,
		})
	}

	return records, nil
}

// Save replaces every row inside a single transaction.
func (s *SQLStore) Save(ctx context.Context, records *models.Records) error {
	if records == nil {
		return ErrNilRecords
	}
	records = canonical(records)

	var docs []documentRow
	for _, d := range records.Quotations {
		d.Kind = models.KindQuotation
		docs = append(docs, toDocumentRow(d, len(docs)))
	}
	for _, d := range records.Invoices {
		d.Kind = models.KindFinalBill
		docs = append(docs, toDocumentRow(d, len(docs)))
	}

	pays := make([]paymentRow, 0, len(records.Payments))
	for i, p := range records.Payments {
		pays = append(pays, paymentRow{
			ID:          p.ID,
			Position:    i,
			InvoiceID:   p.InvoiceID,
			Amount:      p.Amount,
			Date:        p.Date,
			Mode:        p.Mode,
			ClientName:  p.ClientName,
			InvoiceDate: p.InvoiceDate,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&documentRow{}).Error; err != nil {
			return fmt.Errorf("clear documents: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&paymentRow{}).Error; err != nil {
			return fmt.Errorf("clear payments: %w", err)
		}
		if len(docs) > 0 {
			if err := tx.Create(&docs).Error; err != nil {
				return fmt.Errorf("insert documents: %w", err)
			}
		}
		if len(pays) > 0 {
			if err := tx.Create(&pays).Error; err != nil {
				return fmt.Errorf("insert payments: %w", err)
			}
		}
		return nil
	})
}
