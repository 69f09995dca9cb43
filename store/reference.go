package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sf1tzp/symbology-sub000/orm"
)

// CreateCompany registers a public company.
func (s *Service) CreateCompany(
	ctx context.Context,
	company *orm.Company,
) (*orm.Company, error) {
	created, err := s.db.CreateCompany(ctx, company)
	if err != nil {
		return nil, wrapServiceError(err, "creating company")
	}

	log.Info().
		Str("company_id", created.ID.String()).
		Str("ticker", created.Ticker).
		Msg("company created")

	return created, nil
}

// GetCompany resolves a company by ticker.
func (s *Service) GetCompany(
	ctx context.Context,
	ticker string,
) (*orm.Company, error) {
	company, err := s.db.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return nil, wrapServiceError(err, "resolving ticker")
	}

	return company, nil
}

// CreateCompanyGroup registers a company group.
func (s *Service) CreateCompanyGroup(
	ctx context.Context,
	group *orm.CompanyGroup,
) (*orm.CompanyGroup, error) {
	created, err := s.db.CreateCompanyGroup(ctx, group)
	if err != nil {
		return nil, wrapServiceError(err, "creating company group")
	}

	return created, nil
}

// GetCompanyGroup retrieves a company group by id.
func (s *Service) GetCompanyGroup(
	ctx context.Context,
	id uuid.UUID,
) (*orm.CompanyGroup, error) {
	group, err := s.db.GetCompanyGroup(ctx, id)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving company group")
	}

	return group, nil
}

// CreateFiling registers a filing under a company, resolved by ticker.
func (s *Service) CreateFiling(
	ctx context.Context,
	ticker string,
	filing *orm.Filing,
) (*orm.Filing, error) {
	company, err := s.db.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return nil, wrapServiceError(err, "resolving ticker")
	}
	filing.CompanyID = company.ID

	created, err := s.db.CreateFiling(ctx, filing)
	if err != nil {
		return nil, wrapServiceError(err, "creating filing")
	}

	log.Info().
		Str("filing_id", created.ID.String()).
		Str("ticker", company.Ticker).
		Str("accession_number", created.AccessionNumber).
		Msg("filing created")

	return created, nil
}

// CreateModelConfig registers a generation configuration.
func (s *Service) CreateModelConfig(
	ctx context.Context,
	config *orm.ModelConfig,
) (*orm.ModelConfig, error) {
	created, err := s.db.CreateModelConfig(ctx, config)
	if err != nil {
		return nil, wrapServiceError(err, "creating model config")
	}

	return created, nil
}

// GetModelConfig retrieves a generation configuration by id.
func (s *Service) GetModelConfig(
	ctx context.Context,
	id uuid.UUID,
) (*orm.ModelConfig, error) {
	config, err := s.db.GetModelConfig(ctx, id)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving model config")
	}

	return config, nil
}

// CreatePrompt registers a reusable prompt.
func (s *Service) CreatePrompt(
	ctx context.Context,
	prompt *orm.Prompt,
) (*orm.Prompt, error) {
	created, err := s.db.CreatePrompt(ctx, prompt)
	if err != nil {
		return nil, wrapServiceError(err, "creating prompt")
	}

	return created, nil
}

// GetPrompt retrieves a prompt by id.
func (s *Service) GetPrompt(
	ctx context.Context,
	id uuid.UUID,
) (*orm.Prompt, error) {
	prompt, err := s.db.GetPrompt(ctx, id)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving prompt")
	}

	return prompt, nil
}
