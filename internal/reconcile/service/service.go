// Package service implements the reconciliation jobs that copy externally
// maintained drive links and shoot details onto contact records.
package service

import (
	"context"

	"casting_ops_backend/internal/reconcile/repository"
	"casting_ops_backend/internal/reconcile/transport"
	"casting_ops_backend/platform/apperr"
	"casting_ops_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface of the reconciliation jobs.
type Store interface {
	GetDriveLink(ctx context.Context, pageKey string) (*repository.DriveLink, error)
	ListDriveLinks(ctx context.Context, projectName *string) ([]repository.DriveLink, error)
	UpsertDriveLinks(ctx context.Context, links []repository.DriveLink) error
	UpsertShootDetails(ctx context.Context, details []repository.ShootDetail) error
	ShootDetailKeys(ctx context.Context, projectName *string) ([]string, error)
	FindShootDetails(ctx context.Context, pageKey, normalizedName *string) ([]repository.ShootDetail, error)
	ContactsForPage(ctx context.Context, pageKey string, projectName *string, contactID *uuid.UUID) ([]repository.ContactTarget, error)
	FillMakingURLs(ctx context.Context, fills []repository.MakingURLFill) error
	FillDetails(ctx context.Context, fills []repository.DetailFill) error
	ApplyDetails(ctx context.Context, f repository.DetailFill) error
}

// Service provides the reconciliation jobs
type Service struct {
	repo Store
	log  *logger.Logger
}

// New creates a new reconcile service
func New(repo Store, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SyncDriveLinks fills empty making URLs from the drive links. With a page key
// only that page is synced (one contact when a contact id is given); without
// one every drive link is synced.
func (s *Service) SyncDriveLinks(ctx context.Context, req transport.SyncDriveLinksRequest) (transport.SyncResult, error) {
	if req.ContactID != nil && req.PageKey == "" {
		return transport.SyncResult{}, apperr.Validation("externalPageKey is required with contactId")
	}
	project := optional(req.ProjectName)

	if req.PageKey != "" {
		link, err := s.repo.GetDriveLink(ctx, pageKey(req.PageKey))
		if err != nil {
			return transport.SyncResult{}, err
		}
		if link == nil {
			return transport.SyncResult{Found: false}, nil
		}
		updated, err := s.syncDriveLink(ctx, *link, project, req.ContactID)
		if err != nil {
			return transport.SyncResult{}, err
		}
		return transport.SyncResult{Updated: updated, Found: true, FolderURL: link.FolderURL}, nil
	}

	links, err := s.repo.ListDriveLinks(ctx, project)
	if err != nil {
		return transport.SyncResult{}, err
	}
	total := 0
	for _, link := range links {
		updated, err := s.syncDriveLink(ctx, link, nil, nil)
		if err != nil {
			return transport.SyncResult{Updated: total, Found: true}, err
		}
		total += updated
	}
	s.log.Info("drive links synced", "links", len(links), "updated", total)
	return transport.SyncResult{Updated: total, Found: len(links) > 0}, nil
}

func (s *Service) syncDriveLink(ctx context.Context, link repository.DriveLink, project *string, contactID *uuid.UUID) (int, error) {
	contacts, err := s.repo.ContactsForPage(ctx, link.PageKey, project, contactID)
	if err != nil {
		return 0, err
	}
	var fills []repository.MakingURLFill
	for _, c := range contacts {
		if c.MakingURL == "" {
			fills = append(fills, repository.MakingURLFill{ContactID: c.ID, URL: link.FolderURL})
		}
	}
	if err := s.repo.FillMakingURLs(ctx, fills); err != nil {
		return 0, err
	}
	return len(fills), nil
}

// SyncShootDetails copies shoot logistics into the empty fields of matching
// contacts. Without a page key every page with shoot details is synced,
// narrowed by project name when given.
func (s *Service) SyncShootDetails(ctx context.Context, req transport.SyncShootDetailsRequest) (transport.SyncResult, error) {
	project := optional(req.ProjectName)

	keys := []string{pageKey(req.PageKey)}
	if req.PageKey == "" {
		var err error
		if keys, err = s.repo.ShootDetailKeys(ctx, project); err != nil {
			return transport.SyncResult{}, err
		}
	}

	result := transport.SyncResult{}
	for _, key := range keys {
		updated, found, err := s.syncShootDetails(ctx, key, project)
		if err != nil {
			return result, err
		}
		result.Updated += updated
		result.Found = result.Found || found
	}
	if req.PageKey == "" {
		s.log.Info("shoot details synced", "pages", len(keys), "updated", result.Updated)
	}
	return result, nil
}

func (s *Service) syncShootDetails(ctx context.Context, key string, project *string) (int, bool, error) {
	details, err := s.repo.FindShootDetails(ctx, &key, nil)
	if err != nil {
		return 0, false, err
	}
	if len(details) == 0 {
		return 0, false, nil
	}

	byName := make(map[string]repository.ShootDetail, len(details))
	for _, d := range details {
		name := d.NormalizedName
		if name == "" {
			name = NormalizeName(d.CastName)
		}
		if _, seen := byName[name]; !seen {
			byName[name] = d
		}
	}

	contacts, err := s.repo.ContactsForPage(ctx, key, project, nil)
	if err != nil {
		return 0, true, err
	}
	var fills []repository.DetailFill
	for _, c := range contacts {
		d, ok := byName[NormalizeName(c.CastName)]
		if !ok {
			continue
		}
		if fill, changed := missingDetails(c, d); changed {
			fills = append(fills, fill)
		}
	}
	if err := s.repo.FillDetails(ctx, fills); err != nil {
		return 0, true, err
	}
	return len(fills), true, nil
}

// missingDetails keeps only the detail values that land in empty contact fields.
func missingDetails(c repository.ContactTarget, d repository.ShootDetail) (repository.DetailFill, bool) {
	fill := repository.DetailFill{ContactID: c.ID}
	changed := false
	pick := func(current, candidate string, dst *string) {
		if current == "" && candidate != "" {
			*dst = candidate
			changed = true
		}
	}
	pick(c.InTime, d.InTime, &fill.InTime)
	pick(c.OutTime, d.OutTime, &fill.OutTime)
	pick(c.Location, d.Location, &fill.Location)
	pick(c.Address, d.Address, &fill.Address)
	return fill, changed
}

// LookupShootDetails searches shoot details by page key or cast name and can
// copy the first hit onto a contact.
func (s *Service) LookupShootDetails(ctx context.Context, req transport.LookupShootDetailsRequest) (transport.LookupShootDetailsResponse, error) {
	var key, name *string
	switch {
	case req.PageKey != "":
		k := pageKey(req.PageKey)
		key = &k
	case req.CastName != "":
		n := NormalizeName(req.CastName)
		name = &n
	default:
		return transport.LookupShootDetailsResponse{}, apperr.Validation("castName or externalPageKey is required")
	}

	details, err := s.repo.FindShootDetails(ctx, key, name)
	if err != nil {
		return transport.LookupShootDetailsResponse{}, err
	}
	resp := transport.LookupShootDetailsResponse{
		Found:   len(details) > 0,
		Records: make([]transport.ShootDetailResponse, 0, len(details)),
	}
	for _, d := range details {
		resp.Records = append(resp.Records, toDetailResponse(d))
	}

	if req.AutoApplyToContactID != nil && len(details) > 0 {
		first := details[0]
		err := s.repo.ApplyDetails(ctx, repository.DetailFill{
			ContactID: *req.AutoApplyToContactID,
			InTime:    first.InTime,
			OutTime:   first.OutTime,
			Location:  first.Location,
			Address:   first.Address,
		})
		if err != nil {
			return transport.LookupShootDetailsResponse{}, err
		}
		resp.Applied = true
	}
	return resp, nil
}

// UpsertDriveLinks ingests drive links keyed by page.
func (s *Service) UpsertDriveLinks(ctx context.Context, req transport.UpsertDriveLinksRequest) (transport.UpsertResponse, error) {
	links := make([]repository.DriveLink, 0, len(req.Links))
	for _, in := range req.Links {
		key := pageKey(in.PageKey)
		if key == "" {
			return transport.UpsertResponse{}, apperr.Validation("externalPageKey is empty")
		}
		links = append(links, repository.DriveLink{PageKey: key, ProjectName: in.ProjectName, FolderURL: in.FolderURL})
	}
	if err := s.repo.UpsertDriveLinks(ctx, links); err != nil {
		return transport.UpsertResponse{}, err
	}
	return transport.UpsertResponse{Upserted: len(links)}, nil
}

// UpsertShootDetails ingests shoot details keyed by page and normalized name.
func (s *Service) UpsertShootDetails(ctx context.Context, req transport.UpsertShootDetailsRequest) (transport.UpsertResponse, error) {
	details := make([]repository.ShootDetail, 0, len(req.Details))
	for _, in := range req.Details {
		key := pageKey(in.PageKey)
		name := NormalizeName(in.CastName)
		if key == "" || name == "" {
			return transport.UpsertResponse{}, apperr.Validation("externalPageKey and castName must not be blank")
		}
		details = append(details, repository.ShootDetail{
			ID:             uuid.New(),
			PageKey:        key,
			ProjectName:    in.ProjectName,
			CastName:       in.CastName,
			NormalizedName: name,
			InTime:         in.InTime,
			OutTime:        in.OutTime,
			Location:       in.Location,
			Address:        in.Address,
		})
	}
	if err := s.repo.UpsertShootDetails(ctx, details); err != nil {
		return transport.UpsertResponse{}, err
	}
	return transport.UpsertResponse{Upserted: len(details)}, nil
}

func toDetailResponse(d repository.ShootDetail) transport.ShootDetailResponse {
	return transport.ShootDetailResponse{
		ID:          d.ID,
		PageKey:     d.PageKey,
		ProjectName: d.ProjectName,
		CastName:    d.CastName,
		InTime:      d.InTime,
		OutTime:     d.OutTime,
		Location:    d.Location,
		Address:     d.Address,
		UpdatedAt:   d.UpdatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
