// Package external serves the class and feature reference pages from the
// D&D 5e SRD API.
package external

//go:generate mockgen -destination=mock/mock_client.go -package=externalmock github.com/KirkDiggler/rpg-sheets/internal/clients/external Client

import (
	"cmp"
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

// Client defines the reference lookups the sheet pages link to
type Client interface {
	// ListClasses returns every class, sorted by name
	ListClasses(ctx context.Context) ([]*ClassSummary, error)

	// GetClass returns a class with its level 1 features
	GetClass(ctx context.Context, key string) (*ClassData, error)

	// GetFeature returns a single class feature
	GetFeature(ctx context.Context, key string) (*FeatureData, error)
}

type client struct {
	srd dnd5e.Interface
}

// DefaultBaseURL is the 2014 ruleset endpoint the characters are built on.
const DefaultBaseURL = "https://www.dnd5eapi.co/api/2014/"

// Config fields left zero fall back to DefaultBaseURL, a 30s request
// timeout and a day of caching.
type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
	CacheTTL    time.Duration
}

// Validate fills defaults in place.
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.HTTPTimeout < 0 {
		vb.Field("HTTPTimeout", "must not be negative")
	}
	if cfg.CacheTTL < 0 {
		vb.Field("CacheTTL", "must not be negative")
	}
	if err := vb.Build(); err != nil {
		return err
	}

	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	cfg.HTTPTimeout = cmp.Or(cfg.HTTPTimeout, 30*time.Second)
	cfg.CacheTTL = cmp.Or(cfg.CacheTTL, 24*time.Hour)
	return nil
}

// New wraps the API client in dnd5e-api's response cache.
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create reference api client")
	}

	return &client{srd: dnd5e.NewCachedClient(api, cfg.CacheTTL)}, nil
}

func (c *client) ListClasses(_ context.Context) ([]*ClassSummary, error) {
	refs, err := c.srd.ListClasses()
	if err != nil {
		return nil, unavailable(err, "failed to list classes")
	}

	out := make([]*ClassSummary, 0, len(refs))
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		out = append(out, &ClassSummary{Key: ref.Key, Name: ref.Name})
	}

	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortFunc(out, func(a, b *ClassSummary) int {
		return col.CompareString(a.Name, b.Name)
	})

	return out, nil
}

func (c *client) GetClass(_ context.Context, key string) (*ClassData, error) {
	if key == "" {
		return nil, errors.InvalidArgument("class key is required")
	}

	refs, err := c.srd.ListClasses()
	if err != nil {
		return nil, unavailable(err, "failed to list classes")
	}
	if !containsKey(refs, key) {
		return nil, errors.NotFoundf("class %s not found", key).WithMeta("class", key)
	}

	class, err := c.srd.GetClass(key)
	if err != nil {
		return nil, unavailable(err, "failed to get class "+key)
	}

	level1, err := c.srd.GetClassLevel(key, 1)
	if err != nil {
		return nil, unavailable(err, "failed to get class level 1 for "+key)
	}

	data := convertClass(class)
	if level1 != nil {
		data.Features = c.loadFeatures(class, level1.Features)
		if level1.SpellCasting != nil {
			data.SpellsKnown = level1.SpellCasting.SpellsKnown
			data.SpellSlotsLevel1 = level1.SpellCasting.SpellSlotsLevel1
		}
	}

	return data, nil
}

// loadFeatures fetches feature details concurrently. A feature that fails to
// load is shown from its reference alone.
func (c *client) loadFeatures(class *entities.Class, refs []*entities.ReferenceItem) []*FeatureData {
	features := make([]*FeatureData, len(refs))
	var wg sync.WaitGroup

	for i, ref := range refs {
		if ref == nil {
			continue
		}
		wg.Add(1)
		go func(idx int, ref *entities.ReferenceItem) {
			defer wg.Done()

			feature, err := c.srd.GetFeature(ref.Key)
			if err != nil || feature == nil {
				slog.Error("Failed to fetch feature details", "feature", ref.Key, "error", err)
				feature = &entities.Feature{
					Key:   ref.Key,
					Name:  ref.Name,
					Level: 1,
					Class: &entities.ReferenceItem{Key: class.Key, Name: class.Name},
				}
			}
			features[idx] = convertFeature(feature)
		}(i, ref)
	}

	wg.Wait()

	return slices.DeleteFunc(features, func(f *FeatureData) bool { return f == nil })
}

func (c *client) GetFeature(_ context.Context, key string) (*FeatureData, error) {
	if key == "" {
		return nil, errors.InvalidArgument("feature key is required")
	}

	refs, err := c.srd.ListFeatures()
	if err != nil {
		return nil, unavailable(err, "failed to list features")
	}
	if !containsKey(refs, key) {
		return nil, errors.NotFoundf("feature %s not found", key).WithMeta("feature", key)
	}

	slog.Info("Calling D&D 5e API to get feature", "feature", key)
	feature, err := c.srd.GetFeature(key)
	if err != nil {
		return nil, unavailable(err, "failed to get feature "+key)
	}

	return convertFeature(feature), nil
}

func convertClass(class *entities.Class) *ClassData {
	data := &ClassData{
		Key:    class.Key,
		Name:   class.Name,
		HitDie: class.HitDie,
	}
	for _, st := range class.SavingThrows {
		if st != nil {
			data.SavingThrows = append(data.SavingThrows, st.Name)
		}
	}
	data.ArmorProficiencies = referenceNames(class.ArmorProficiencies)
	data.WeaponProficiencies = referenceNames(class.WeaponProficiencies)
	data.ToolProficiencies = referenceNames(class.ToolProficiencies)
	return data
}

func convertFeature(feature *entities.Feature) *FeatureData {
	data := &FeatureData{
		Key:        feature.Key,
		Name:       feature.Name,
		Level:      feature.Level,
		HasChoices: feature.FeatureSpecific != nil && feature.FeatureSpecific.SubFeatureOptions != nil,
	}
	if feature.Class != nil {
		data.ClassKey = feature.Class.Key
		data.ClassName = feature.Class.Name
	}
	return data
}

func referenceNames(refs []*entities.ReferenceItem) []string {
	var names []string
	for _, r := range refs {
		if r != nil {
			names = append(names, r.Name)
		}
	}
	return names
}

func containsKey(refs []*entities.ReferenceItem, key string) bool {
	return slices.ContainsFunc(refs, func(r *entities.ReferenceItem) bool {
		return r != nil && r.Key == key
	})
}

func unavailable(err error, message string) error {
	return errors.WrapWithCode(err, errors.CodeUnavailable, message)
}
