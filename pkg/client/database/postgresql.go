package database

import (
	"net"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"
)

const DefaultPostgreSQLPort = 5432

// PostgreSQL has no global read-only switch to clear, it is a plain Handle.
type PostgreSQL struct {
	*sqlHandle
}

func NewPostgreSQL(ds Datasource) (*PostgreSQL, error) {
	h, err := open("postgres", postgresDSN(ds))
	if err != nil {
		return nil, err
	}
	return &PostgreSQL{sqlHandle: h}, nil
}

func postgresDSN(ds Datasource) string {
	port := ds.Port
	if port == 0 {
		port = DefaultPostgreSQLPort
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(ds.User, ds.Password),
		Host:     net.JoinHostPort(ds.Host, strconv.Itoa(port)),
		Path:     "/postgres",
		RawQuery: url.Values{"sslmode": {"disable"}, "connect_timeout": {strconv.Itoa(int(connectTimeout.Seconds()))}}.Encode(),
	}
	return u.String()
}
