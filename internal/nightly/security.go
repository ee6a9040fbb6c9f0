package nightly

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
	"github.com/spf13/cast"
)

// cargo audit has emitted both {"vulnerabilities": {"list": [...]}} and
// {"vulnerabilities": [...]}; the list query is tried first.
var (
	vulnListQuery   = jmespath.MustCompile("vulnerabilities.list")
	vulnArrayQuery  = jmespath.MustCompile("vulnerabilities")
	crateCountQuery = jmespath.MustCompile(`lockfile."dependency-count"`)
	vulnProjection  = jmespath.MustCompile(
		`[].{id: advisory.id || id, package: package.name || advisory.package || package, version: package.version, title: advisory.title || title, url: advisory.url || url}`)
)

// ParseAudit extracts the vulnerability list and crate count from audit JSON
func ParseAudit(data []byte) (SecurityResults, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return SecurityResults{}, fmt.Errorf("invalid audit JSON: %w", err)
	}

	list, err := vulnerabilityList(doc)
	if err != nil {
		return SecurityResults{}, err
	}

	vulns := make([]Vulnerability, 0, len(list))
	if len(list) > 0 {
		projected, err := vulnProjection.Search(list)
		if err != nil {
			return SecurityResults{}, fmt.Errorf("failed to read vulnerabilities: %w", err)
		}
		for _, item := range cast.ToSlice(projected) {
			m := cast.ToStringMap(item)
			vulns = append(vulns, Vulnerability{
				ID:      cast.ToString(m["id"]),
				Package: cast.ToString(m["package"]),
				Version: cast.ToString(m["version"]),
				Title:   cast.ToString(m["title"]),
				URL:     cast.ToString(m["url"]),
			})
		}
	}

	crates, err := crateCountQuery.Search(doc)
	if err != nil {
		return SecurityResults{}, fmt.Errorf("failed to read dependency count: %w", err)
	}

	vulnerable := make(map[string]struct{})
	for i, v := range vulns {
		key := v.Package
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		vulnerable[key] = struct{}{}
	}

	return SecurityResults{
		Vulnerabilities:  vulns,
		AuditPassed:      len(vulns) == 0,
		TotalCrates:      cast.ToInt(crates),
		VulnerableCrates: len(vulnerable),
	}, nil
}

func vulnerabilityList(doc any) ([]any, error) {
	result, err := vulnListQuery.Search(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to query vulnerabilities: %w", err)
	}
	if list, ok := result.([]any); ok {
		return list, nil
	}

	result, err = vulnArrayQuery.Search(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to query vulnerabilities: %w", err)
	}
	if list, ok := result.([]any); ok {
		return list, nil
	}
	return nil, nil
}
