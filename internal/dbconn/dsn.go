package dbconn

import (
	"fmt"
	"net/url"
)

// ConnParams are the caller-supplied connection parameters. For sqlite, Name
// is the full path to the database file and the rest is ignored.
type ConnParams struct {
	Dialect  Dialect
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string // postgresql only; empty means "disable"
}

// BuildDSN constructs the driver-specific connection string.
func BuildDSN(p ConnParams) (string, error) {
	switch p.Dialect {
	case MySQL:
		host := p.Host
		if p.Port != 0 {
			host = fmt.Sprintf("%s:%d", p.Host, p.Port)
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", p.User, p.Password, host, p.Name), nil
	case PostgreSQL:
		sslMode := p.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		hostPort := p.Host
		if p.Port != 0 {
			hostPort = fmt.Sprintf("%s:%d", p.Host, p.Port)
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.User, p.Password),
			Host:     hostPort,
			Path:     "/" + p.Name,
			RawQuery: "sslmode=" + sslMode,
		}
		return u.String(), nil
	case SQLite:
		if p.Name == "" {
			return "", fmt.Errorf("sqlite requires a database file path")
		}
		return p.Name, nil
	case MSSQL:
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(p.User, p.Password),
			Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
			RawQuery: "database=" + url.QueryEscape(p.Name),
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported database dialect: %q", p.Dialect)
	}
}
