// Package dhis2 is the transport to the external DHIS2 instance: basic-auth
// HTTP client, bounded-retry connectivity check, dataValueSets import with
// normalized result parsing, and the pure mapping from blood-bank entities
// to DHIS2 data values.
package dhis2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
)

// Config holds the connection settings for one DHIS2 instance.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	APIVersion string
	OrgUnit    string
	Timeout    time.Duration
}

// Conflict is one rejected value reported by the DHIS2 import summary.
type Conflict struct {
	Object string `json:"object"`
	Value  string `json:"value"`
}

// ImportResult is the normalized outcome of a dataValueSets import.
type ImportResult struct {
	Status        string     `json:"status"`
	ImportedCount int        `json:"imported_count"`
	UpdatedCount  int        `json:"updated_count"`
	IgnoredCount  int        `json:"ignored_count"`
	DeletedCount  int        `json:"deleted_count"`
	Conflicts     []Conflict `json:"conflicts"`
}

// Client talks to one DHIS2 instance. It is safe for concurrent use; every
// request carries basic auth and the configured fixed timeout.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retryPolicy
	log   zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		retry: defaultRetryPolicy(),
		log:   log.With().Str("component", "dhis2").Logger(),
	}
}

func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("%s/api/%s%s", c.cfg.BaseURL, c.cfg.APIVersion, path)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL(path), body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// TestConnection probes the identity endpoint. It never returns an error:
// transient failures are retried with exponential backoff (bounded, so the
// health check latency stays bounded too) and any remaining failure reports
// the instance as unreachable.
func (c *Client) TestConnection(ctx context.Context) bool {
	err := c.retry.do(ctx, func() error {
		req, err := c.newRequest(ctx, http.MethodGet, "/me", nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d from /me", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		c.log.Error().Err(err).Msg("DHIS2 connection test failed")
		return false
	}
	return true
}

type importRequest struct {
	DataValues []DataValue `json:"dataValues"`
}

type importSummary struct {
	Status      string     `json:"status"`
	ImportCount int        `json:"importCount"`
	UpdateCount int        `json:"updateCount"`
	IgnoreCount int        `json:"ignoreCount"`
	DeleteCount int        `json:"deleteCount"`
	Conflicts   []Conflict `json:"conflicts"`
}

// ImportDataValues posts data values with create-and-update (upsert)
// semantics and parses the import summary into a normalized result.
func (c *Client) ImportDataValues(ctx context.Context, values []DataValue) (*ImportResult, error) {
	payload, err := json.Marshal(importRequest{DataValues: values})
	if err != nil {
		return nil, fmt.Errorf("marshal data values: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/dataValueSets?importStrategy=CREATE_AND_UPDATE", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post data values: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read import response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("import rejected with status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		ImportSummary importSummary `json:"importSummary"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse import response: %w", err)
	}

	summary := parsed.ImportSummary
	status := summary.Status
	if status == "" {
		status = "ERROR"
	}
	return &ImportResult{
		Status:        status,
		ImportedCount: summary.ImportCount,
		UpdatedCount:  summary.UpdateCount,
		IgnoredCount:  summary.IgnoreCount,
		DeletedCount:  summary.DeleteCount,
		Conflicts:     summary.Conflicts,
	}, nil
}

// ExportDonations maps donations to data values and imports them. Errors
// propagate so the orchestrator can mark the sync failed.
func (c *Client) ExportDonations(ctx context.Context, donations []*donation.Donation) (*ImportResult, error) {
	var values []DataValue
	for _, d := range donations {
		values = append(values, MapDonation(d, c.cfg.OrgUnit)...)
	}
	return c.ImportDataValues(ctx, values)
}

// ExportInventory groups products by (blood type, status), maps the counts
// to monthly data values, and imports them.
func (c *Client) ExportInventory(ctx context.Context, products []*product.Product) (*ImportResult, error) {
	period := time.Now().Format("200601")
	values := MapInventory(GroupInventory(products), period, c.cfg.OrgUnit)
	return c.ImportDataValues(ctx, values)
}

// OrgUnit is a DHIS2 organisation unit as returned by the metadata API.
type OrgUnit struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// GetOrganisationUnits retrieves the organisation unit hierarchy.
func (c *Client) GetOrganisationUnits(ctx context.Context) ([]OrgUnit, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/organisationUnits?fields=id,name,level&paging=false", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch organisation units: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from /organisationUnits", resp.StatusCode)
	}

	var parsed struct {
		OrganisationUnits []OrgUnit `json:"organisationUnits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse organisation units: %w", err)
	}
	return parsed.OrganisationUnits, nil
}

// DataElement is a DHIS2 data element as returned by the metadata API.
type DataElement struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ValueType string `json:"valueType"`
}

// GetDataElements retrieves data elements for the given domain type.
func (c *Client) GetDataElements(ctx context.Context, domainType string) ([]DataElement, error) {
	path := fmt.Sprintf("/dataElements?fields=id,name,valueType&filter=domainType:eq:%s&paging=false", domainType)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch data elements: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from /dataElements", resp.StatusCode)
	}

	var parsed struct {
		DataElements []DataElement `json:"dataElements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse data elements: %w", err)
	}
	return parsed.DataElements, nil
}
