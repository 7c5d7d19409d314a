package providers

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"

	"onlinesync/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct tag rules and then the cross-field checks that tags
// cannot express.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}

	c := cv.conf
	var errs []error
	if !c.CSV.Enabled && !c.Sheets.Enabled {
		errs = append(errs, errors.New("no sink enabled: enable csv and/or sheets"))
	}
	if c.CSV.Enabled && c.CSV.FilePath == "" {
		errs = append(errs, errors.New("csv.filePath is required when csv is enabled"))
	}
	if c.Sheets.Enabled {
		if c.Sheets.URL == "" {
			errs = append(errs, errors.New("sheets.url is required when sheets is enabled"))
		}
		if c.Sheets.CredentialsJSON == "" && c.Sheets.CredentialsFile == "" {
			errs = append(errs, errors.New("sheets credentials are required when sheets is enabled"))
		}
		if c.Sheets.Worksheet == "" {
			errs = append(errs, errors.New("sheets.worksheet is required"))
		}
	}
	if c.Scrape.MinDelay < 0 || c.Scrape.MaxDelay < c.Scrape.MinDelay {
		errs = append(errs, fmt.Errorf("scrape delay bounds are invalid: min=%s max=%s", c.Scrape.MinDelay, c.Scrape.MaxDelay))
	}
	if c.Cache.Enabled && c.Cache.Size < MinCacheSizeMB {
		errs = append(errs, fmt.Errorf("cache.size must be at least %dMB when the cache is enabled, got %d", MinCacheSizeMB, c.Cache.Size))
	}
	if c.Schedule.Interval < 0 {
		errs = append(errs, errors.New("schedule.interval must not be negative"))
	}
	return errors.Join(errs...)
}
