package appengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/appengine-prune/pkg/domain/errors"
)

// minFields is the number of columns a listing row must have to carry the
// service, version and last-deployed columns.
const minFields = 4

// VersionRecord is one deployed version of one service as reported by
// `gcloud app versions list`.
type VersionRecord struct {
	Service      string
	Label        string
	LastDeployed string
	// Fields holds every column of the row, including the ones above.
	Fields []string
}

// ParseVersionRecord splits a listing row into a VersionRecord.
func ParseVersionRecord(line string) (VersionRecord, error) {
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return VersionRecord{}, errors.New(errors.CodeParseFailed, domain,
			fmt.Sprintf("expected at least %d fields, got %d in row %q", minFields, len(fields), line), nil)
	}
	return VersionRecord{
		Service:      fields[0],
		Label:        fields[1],
		LastDeployed: fields[3],
		Fields:       fields,
	}, nil
}

// ServiceVersions maps service names to their versions in listing order.
type ServiceVersions struct {
	order    []string
	versions map[string][]VersionRecord
}

func NewServiceVersions() *ServiceVersions {
	return &ServiceVersions{versions: make(map[string][]VersionRecord)}
}

// Add appends r to the versions of r.Service.
func (s *ServiceVersions) Add(r VersionRecord) {
	if _, ok := s.versions[r.Service]; !ok {
		s.order = append(s.order, r.Service)
	}
	s.versions[r.Service] = append(s.versions[r.Service], r)
}

// Services returns the service names in the order they were first seen.
func (s *ServiceVersions) Services() []string {
	return append([]string(nil), s.order...)
}

// Versions returns a copy of the versions of service.
func (s *ServiceVersions) Versions(service string) []VersionRecord {
	return append([]VersionRecord(nil), s.versions[service]...)
}

// Len returns the number of services.
func (s *ServiceVersions) Len() int {
	return len(s.order)
}

// VersionCount returns the number of versions across all services.
func (s *ServiceVersions) VersionCount() int {
	n := 0
	for _, v := range s.versions {
		n += len(v)
	}
	return n
}

// ParseVersionList parses the output of `gcloud app versions list`. The first
// line is a header; blank lines are ignored.
func ParseVersionList(output string) (*ServiceVersions, error) {
	result := NewServiceVersions()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		return result, nil
	}
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := ParseVersionRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		result.Add(record)
	}
	return result, nil
}

// Lister reads the live versions of a project.
type Lister struct {
	appengine AppEngineRunner
}

func NewLister(appengine AppEngineRunner) *Lister {
	return &Lister{appengine: appengine}
}

// ListVersions returns the deployed versions of every service in project.
func (l *Lister) ListVersions(ctx context.Context, project string) (*ServiceVersions, error) {
	output, err := l.appengine.ListVersions(ctx, project)
	if err != nil {
		return nil, errors.New(errors.CodeCommandFailed, domain,
			fmt.Sprintf("failed to list versions for project %s", project), err)
	}
	versions, err := ParseVersionList(output)
	if err != nil {
		return nil, fmt.Errorf("parsing versions for project %s: %w", project, err)
	}
	return versions, nil
}
