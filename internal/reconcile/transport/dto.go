package transport

import (
	"time"

	"github.com/google/uuid"
)

// SyncDriveLinksRequest selects the drive-link sync granularity. A contact id
// needs a page key; no page key syncs every drive link (narrowed by project
// name when given).
type SyncDriveLinksRequest struct {
	PageKey     string     `json:"externalPageKey,omitempty" validate:"required_with=ContactID,max=200"`
	ProjectName string     `json:"projectName,omitempty" validate:"max=300"`
	ContactID   *uuid.UUID `json:"contactId,omitempty"`
}

// SyncShootDetailsRequest selects the pages whose shoot details are copied.
// An empty request syncs every page.
type SyncShootDetailsRequest struct {
	PageKey     string `json:"externalPageKey,omitempty" validate:"max=200"`
	ProjectName string `json:"projectName,omitempty" validate:"max=300"`
}

// SyncResult reports a sync run
type SyncResult struct {
	Updated int  `json:"updated"`
	Found   bool `json:"found"`
	// FolderURL is set when a single page was synced.
	FolderURL string `json:"driveLink,omitempty"`
}

// LookupShootDetailsRequest searches shoot details. The page key wins when
// both filters are given.
type LookupShootDetailsRequest struct {
	CastName             string     `json:"castName,omitempty" validate:"required_without=PageKey,max=200"`
	PageKey              string     `json:"externalPageKey,omitempty" validate:"required_without=CastName,max=200"`
	AutoApplyToContactID *uuid.UUID `json:"autoApplyToContactId,omitempty"`
}

// ShootDetailResponse is one shoot detail row
type ShootDetailResponse struct {
	ID          uuid.UUID `json:"id"`
	PageKey     string    `json:"externalPageKey"`
	ProjectName string    `json:"projectName"`
	CastName    string    `json:"castName"`
	InTime      string    `json:"inTime"`
	OutTime     string    `json:"outTime"`
	Location    string    `json:"location"`
	Address     string    `json:"address"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LookupShootDetailsResponse is the lookup result
type LookupShootDetailsResponse struct {
	Found   bool                  `json:"found"`
	Records []ShootDetailResponse `json:"records"`
	Applied bool                  `json:"applied"`
}

// DriveLinkInput is one ingested drive link
type DriveLinkInput struct {
	PageKey     string `json:"externalPageKey" validate:"required,max=200"`
	ProjectName string `json:"projectName,omitempty" validate:"max=300"`
	FolderURL   string `json:"driveLink" validate:"required,url,max=1000"`
}

// UpsertDriveLinksRequest ingests drive links
type UpsertDriveLinksRequest struct {
	Links []DriveLinkInput `json:"links" validate:"required,min=1,max=500,dive"`
}

// ShootDetailInput is one ingested shoot detail row
type ShootDetailInput struct {
	PageKey     string `json:"externalPageKey" validate:"required,max=200"`
	ProjectName string `json:"projectName,omitempty" validate:"max=300"`
	CastName    string `json:"castName" validate:"required,max=200"`
	InTime      string `json:"inTime,omitempty" validate:"omitempty,hhmm"`
	OutTime     string `json:"outTime,omitempty" validate:"omitempty,hhmm"`
	Location    string `json:"location,omitempty" validate:"max=300"`
	Address     string `json:"address,omitempty" validate:"max=500"`
}

// UpsertShootDetailsRequest ingests shoot details
type UpsertShootDetailsRequest struct {
	Details []ShootDetailInput `json:"details" validate:"required,min=1,max=1000,dive"`
}

// UpsertResponse reports an ingestion
type UpsertResponse struct {
	Upserted int `json:"upserted"`
}
