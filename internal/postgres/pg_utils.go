// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

var errInvalidURL = errors.New("invalid URL")

func QuoteIdentifier(s string) string {
	if IsQuotedIdentifier(s) {
		return s
	}
	return pq.QuoteIdentifier(s)
}

// QuoteQualifiedIdentifier quotes the table name, qualified by the schema
// when one is given.
func QuoteQualifiedIdentifier(schema, table string) string {
	if schema == "" {
		return QuoteIdentifier(table)
	}
	return QuoteIdentifier(schema) + "." + QuoteIdentifier(table)
}

func IsQuotedIdentifier(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

// parsePoolConfig parses the connection URL, escaping passwords with special
// characters that would otherwise fail URL parsing.
func parsePoolConfig(pgurl string) (*pgxpool.Config, error) {
	pgCfg, err := pgxpool.ParseConfig(pgurl)
	if err != nil {
		urlErr := &url.Error{}
		if !errors.As(err, &urlErr) {
			return nil, err
		}
		escapedURL, escapeErr := escapeConnectionURL(pgurl)
		if escapeErr != nil {
			return nil, fmt.Errorf("failed to escape connection URL: %w", escapeErr)
		}
		if pgCfg, err = pgxpool.ParseConfig(escapedURL); err != nil {
			return nil, err
		}
	}
	configureTCPKeepalive(pgCfg.ConnConfig)
	return pgCfg, nil
}

var postgresURLRegex = regexp.MustCompile(`^(postgres(?:ql)?://)([^@]+?)@(.+)$`)

func escapeConnectionURL(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "postgresql://") && !strings.HasPrefix(rawURL, "postgres://") {
		return rawURL, nil
	}

	matches := postgresURLRegex.FindStringSubmatch(rawURL)
	if matches == nil {
		return "", errInvalidURL
	}

	scheme, userInfo, hostAndPath := matches[1], matches[2], matches[3]

	// split on the first colon, like psql does
	firstColonIndex := strings.Index(userInfo, ":")
	if firstColonIndex == -1 {
		return rawURL, nil
	}

	username := userInfo[:firstColonIndex]
	password := userInfo[firstColonIndex+1:]
	if username == "" {
		return "", errInvalidURL
	}

	// avoid double encoding already escaped passwords
	if strings.Contains(password, "%") {
		if unescaped, err := url.PathUnescape(password); err == nil {
			password = unescaped
		}
	}

	return fmt.Sprintf("%s%s:%s@%s", scheme, username, url.QueryEscape(password), hostAndPath), nil
}

// configureTCPKeepalive makes hung connections fail after ~2.5 minutes of
// unanswered keepalive probes instead of blocking the indexer.
func configureTCPKeepalive(cfg *pgx.ConnConfig) {
	cfg.ConnectTimeout = 30 * time.Second

	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{
			Timeout: 30 * time.Second,
			KeepAliveConfig: net.KeepAliveConfig{
				Enable:   true,
				Idle:     15 * time.Second,
				Interval: 15 * time.Second,
				Count:    9,
			},
		}
		return d.DialContext(ctx, network, addr)
	}
}
