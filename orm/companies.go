package orm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCompany persists a company. Ticker is the public handle and must be
// unique; it is stored uppercased.
func (db DB) CreateCompany(
	ctx context.Context,
	company *Company,
) (*Company, error) {
	if company == nil || company.Ticker == "" || company.Name == "" {
		return nil, &BadInputError{
			Reason: "company must have ticker and name",
		}
	}

	company.Ticker = strings.ToUpper(company.Ticker)

	err := gorm.G[Company](db.dbGorm).Create(ctx, company)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"create company",
			fmt.Sprintf("ticker=%s", company.Ticker),
		)
	}

	return company, nil
}

// GetCompanyByTicker resolves the public company handle.
func (db DB) GetCompanyByTicker(
	ctx context.Context,
	ticker string,
) (*Company, error) {
	if ticker == "" {
		return nil, &BadInputError{Reason: "ticker must be provided"}
	}

	company, err := gorm.G[Company](db.dbGorm).
		Where("ticker = ?", strings.ToUpper(ticker)).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get company by ticker",
			fmt.Sprintf("ticker=%s", ticker),
		)
	}

	return &company, nil
}

// GetCompany retrieves a company by id.
func (db DB) GetCompany(ctx context.Context, id uuid.UUID) (*Company, error) {
	company, err := gorm.G[Company](db.dbGorm).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get company",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &company, nil
}

// CreateCompanyGroup persists a company group.
func (db DB) CreateCompanyGroup(
	ctx context.Context,
	group *CompanyGroup,
) (*CompanyGroup, error) {
	if group == nil || group.Name == "" {
		return nil, &BadInputError{Reason: "group must have a name"}
	}

	err := gorm.G[CompanyGroup](db.dbGorm).Create(ctx, group)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"create company group",
			fmt.Sprintf("name=%s", group.Name),
		)
	}

	return group, nil
}

// GetCompanyGroup retrieves a company group by id.
func (db DB) GetCompanyGroup(
	ctx context.Context,
	id uuid.UUID,
) (*CompanyGroup, error) {
	group, err := gorm.G[CompanyGroup](db.dbGorm).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get company group",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &group, nil
}

// CreateFiling persists a filing. Accession numbers are unique across the
// whole EDGAR corpus, so a duplicate surfaces as a conflict.
func (db DB) CreateFiling(ctx context.Context, filing *Filing) (*Filing, error) {
	if filing == nil || filing.AccessionNumber == "" || filing.FormType == "" {
		return nil, &BadInputError{
			Reason: "filing must have accession number and form type",
		}
	}
	if filing.CompanyID == uuid.Nil {
		return nil, &BadInputError{Reason: "filing must belong to a company"}
	}

	err := gorm.G[Filing](db.dbGorm).Create(ctx, filing)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"create filing",
			fmt.Sprintf("accession_number=%s", filing.AccessionNumber),
		)
	}

	return filing, nil
}

// CreateDocument persists a source document record. The ingestion layer is
// responsible for having stored the raw content in the blob store first.
func (db DB) CreateDocument(
	ctx context.Context,
	document *Document,
) (*Document, error) {
	if document == nil || document.DocumentType == "" {
		return nil, &BadInputError{Reason: "document must have a document type"}
	}
	if document.CompanyID == uuid.Nil {
		return nil, &BadInputError{Reason: "document must belong to a company"}
	}

	err := gorm.G[Document](db.dbGorm).Create(ctx, document)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"create document",
			fmt.Sprintf("company_id=%s, document_type=%s",
				document.CompanyID, document.DocumentType),
		)
	}

	return document, nil
}

// GetDocument retrieves a source document by id.
func (db DB) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	document, err := gorm.G[Document](db.dbGorm).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get document",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &document, nil
}

// ListDocumentsByFiling returns the documents extracted from one filing.
func (db DB) ListDocumentsByFiling(
	ctx context.Context,
	filingID uuid.UUID,
) ([]Document, error) {
	documents, err := gorm.G[Document](db.dbGorm).
		Where("filing_id = ?", filingID).
		Order("created_at ASC").
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list documents by filing",
			fmt.Sprintf("filing_id=%s", filingID),
		)
	}

	return documents, nil
}
