package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"casting_ops_backend/internal/reconcile/repository"
	"casting_ops_backend/internal/reconcile/transport"
	"casting_ops_backend/platform/apperr"
	"casting_ops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pageA = "0123456789abcdef0123456789abcdef"
	pageB = "fedcba9876543210fedcba9876543210"
)

type fakeContact struct {
	repository.ContactTarget
	pageKey string
}

type fakeStore struct {
	mu       sync.Mutex
	links    map[string]repository.DriveLink
	details  []repository.ShootDetail
	contacts map[uuid.UUID]*fakeContact
}

func newFakeStore() *fakeStore {
	return &fakeStore{links: map[string]repository.DriveLink{}, contacts: map[uuid.UUID]*fakeContact{}}
}

func (f *fakeStore) addContact(page, project, castName string) uuid.UUID {
	id := uuid.New()
	f.contacts[id] = &fakeContact{
		ContactTarget: repository.ContactTarget{ID: id, CastName: castName, ProjectName: project},
		pageKey:       page,
	}
	return id
}

func (f *fakeStore) GetDriveLink(_ context.Context, key string) (*repository.DriveLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[key]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (f *fakeStore) ListDriveLinks(_ context.Context, project *string) ([]repository.DriveLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.DriveLink
	for _, l := range f.links {
		if project == nil || l.ProjectName == *project {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageKey < out[j].PageKey })
	return out, nil
}

func (f *fakeStore) UpsertDriveLinks(_ context.Context, links []repository.DriveLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range links {
		f.links[l.PageKey] = l
	}
	return nil
}

func (f *fakeStore) UpsertShootDetails(_ context.Context, details []repository.ShootDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range details {
		replaced := false
		for i, existing := range f.details {
			if existing.PageKey == d.PageKey && existing.NormalizedName == d.NormalizedName {
				d.ID = existing.ID
				f.details[i] = d
				replaced = true
			}
		}
		if !replaced {
			f.details = append(f.details, d)
		}
	}
	return nil
}

func (f *fakeStore) ShootDetailKeys(_ context.Context, project *string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var keys []string
	for _, d := range f.details {
		if (project == nil || d.ProjectName == *project) && !seen[d.PageKey] {
			seen[d.PageKey] = true
			keys = append(keys, d.PageKey)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStore) FindShootDetails(_ context.Context, key, name *string) ([]repository.ShootDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ShootDetail
	for _, d := range f.details {
		if key != nil && d.PageKey != *key {
			continue
		}
		if name != nil && d.NormalizedName != *name {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) ContactsForPage(_ context.Context, key string, project *string, contactID *uuid.UUID) ([]repository.ContactTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ContactTarget
	for _, c := range f.contacts {
		if c.pageKey != key {
			continue
		}
		if project != nil && c.ProjectName != *project {
			continue
		}
		if contactID != nil && c.ID != *contactID {
			continue
		}
		out = append(out, c.ContactTarget)
	}
	return out, nil
}

func (f *fakeStore) FillMakingURLs(_ context.Context, fills []repository.MakingURLFill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fl := range fills {
		if c := f.contacts[fl.ContactID]; c != nil && c.MakingURL == "" {
			c.MakingURL = fl.URL
		}
	}
	return nil
}

func (f *fakeStore) FillDetails(_ context.Context, fills []repository.DetailFill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fl := range fills {
		c := f.contacts[fl.ContactID]
		if c == nil {
			continue
		}
		fillEmpty(&c.InTime, fl.InTime)
		fillEmpty(&c.OutTime, fl.OutTime)
		fillEmpty(&c.Location, fl.Location)
		fillEmpty(&c.Address, fl.Address)
	}
	return nil
}

func (f *fakeStore) ApplyDetails(_ context.Context, fl repository.DetailFill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.contacts[fl.ContactID]
	if c == nil {
		return apperr.NotFound("contact record not found")
	}
	overwrite(&c.InTime, fl.InTime)
	overwrite(&c.OutTime, fl.OutTime)
	overwrite(&c.Location, fl.Location)
	overwrite(&c.Address, fl.Address)
	return nil
}

func fillEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func overwrite(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func newService(store *fakeStore) *Service {
	return New(store, logger.New("test"))
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"山田 花子様":   "山田花子",
		"山田花子さん":   "山田花子",
		"ﾔﾏﾀﾞｻﾝ":   "ヤマダ",
		"Ｋｅｎ　Ｓａｔｏ": "kensato",
		"様":        "様",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}

func TestSyncDriveLinksIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.links[pageA] = repository.DriveLink{PageKey: pageA, ProjectName: "Spring CM", FolderURL: "https://drive.example.com/a"}
	store.addContact(pageA, "Spring CM", "Aoi")
	store.addContact(pageA, "Spring CM", "Ren")
	store.addContact(pageB, "Other", "Mio")
	svc := newService(store)

	first, err := svc.SyncDriveLinks(context.Background(), transport.SyncDriveLinksRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Updated)
	assert.True(t, first.Found)

	second, err := svc.SyncDriveLinks(context.Background(), transport.SyncDriveLinksRequest{})
	require.NoError(t, err)
	assert.Zero(t, second.Updated)
}

func TestSyncDriveLinksNeverOverwrites(t *testing.T) {
	store := newFakeStore()
	store.links[pageA] = repository.DriveLink{PageKey: pageA, FolderURL: "https://drive.example.com/new"}
	id := store.addContact(pageA, "Spring CM", "Aoi")
	store.contacts[id].MakingURL = "https://drive.example.com/old"

	res, err := newService(store).SyncDriveLinks(context.Background(), transport.SyncDriveLinksRequest{PageKey: pageA})
	require.NoError(t, err)
	assert.Zero(t, res.Updated)
	assert.Equal(t, "https://drive.example.com/old", store.contacts[id].MakingURL)
}

func TestSyncDriveLinksSingleContactAcceptsDashedKey(t *testing.T) {
	store := newFakeStore()
	store.links[pageA] = repository.DriveLink{PageKey: pageA, FolderURL: "https://drive.example.com/a"}
	target := store.addContact(pageA, "Spring CM", "Aoi")
	other := store.addContact(pageA, "Spring CM", "Ren")

	dashed := "01234567-89ab-cdef-0123-456789abcdef"
	res, err := newService(store).SyncDriveLinks(context.Background(), transport.SyncDriveLinksRequest{PageKey: dashed, ContactID: &target})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, "https://drive.example.com/a", res.FolderURL)
	assert.Equal(t, "https://drive.example.com/a", store.contacts[target].MakingURL)
	assert.Empty(t, store.contacts[other].MakingURL)
}

func TestSyncDriveLinksUnknownKey(t *testing.T) {
	res, err := newService(newFakeStore()).SyncDriveLinks(context.Background(), transport.SyncDriveLinksRequest{PageKey: pageB})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Zero(t, res.Updated)
}

func TestSyncDriveLinksContactNeedsKey(t *testing.T) {
	id := uuid.New()
	_, err := newService(newFakeStore()).SyncDriveLinks(context.Background(), transport.SyncDriveLinksRequest{ContactID: &id})
	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))
}

func TestSyncShootDetailsFillsOnlyEmptyFields(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	_, err := svc.UpsertShootDetails(context.Background(), transport.UpsertShootDetailsRequest{Details: []transport.ShootDetailInput{
		{PageKey: pageA, CastName: "山田花子様", InTime: "08:00", OutTime: "18:00", Location: "Studio A", Address: "Tokyo"},
	}})
	require.NoError(t, err)

	id := store.addContact(pageA, "Spring CM", "山田 花子")
	store.contacts[id].Location = "Location kept"
	unmatched := store.addContact(pageA, "Spring CM", "Someone Else")

	res, err := svc.SyncShootDetails(context.Background(), transport.SyncShootDetailsRequest{PageKey: pageA})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 1, res.Updated)

	c := store.contacts[id]
	assert.Equal(t, "08:00", c.InTime)
	assert.Equal(t, "18:00", c.OutTime)
	assert.Equal(t, "Location kept", c.Location)
	assert.Equal(t, "Tokyo", c.Address)
	assert.Empty(t, store.contacts[unmatched].InTime)

	again, err := svc.SyncShootDetails(context.Background(), transport.SyncShootDetailsRequest{PageKey: pageA})
	require.NoError(t, err)
	assert.Zero(t, again.Updated)
}

func TestSyncShootDetailsAllPages(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	_, err := svc.UpsertShootDetails(context.Background(), transport.UpsertShootDetailsRequest{Details: []transport.ShootDetailInput{
		{PageKey: pageA, CastName: "Aoi", InTime: "09:00"},
		{PageKey: pageB, CastName: "Ren", InTime: "10:00"},
	}})
	require.NoError(t, err)
	store.addContact(pageA, "A", "Aoi")
	store.addContact(pageB, "B", "Ren")

	res, err := svc.SyncShootDetails(context.Background(), transport.SyncShootDetailsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
}

func TestSyncShootDetailsNoDetails(t *testing.T) {
	res, err := newService(newFakeStore()).SyncShootDetails(context.Background(), transport.SyncShootDetailsRequest{PageKey: pageA})
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestLookupShootDetailsAutoApply(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	_, err := svc.UpsertShootDetails(context.Background(), transport.UpsertShootDetailsRequest{Details: []transport.ShootDetailInput{
		{PageKey: pageA, CastName: "Aoi", InTime: "07:30", Location: "Beach"},
	}})
	require.NoError(t, err)
	id := store.addContact(pageA, "Spring CM", "Aoi")
	store.contacts[id].Location = "Old"

	resp, err := svc.LookupShootDetails(context.Background(), transport.LookupShootDetailsRequest{CastName: "Aoiさん", AutoApplyToContactID: &id})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.True(t, resp.Applied)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "07:30", store.contacts[id].InTime)
	assert.Equal(t, "Beach", store.contacts[id].Location)
}

func TestLookupShootDetailsRequiresFilter(t *testing.T) {
	_, err := newService(newFakeStore()).LookupShootDetails(context.Background(), transport.LookupShootDetailsRequest{})
	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))
}

func TestLookupShootDetailsNotFound(t *testing.T) {
	resp, err := newService(newFakeStore()).LookupShootDetails(context.Background(), transport.LookupShootDetailsRequest{PageKey: pageB})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Records)
	assert.False(t, resp.Applied)
}
