package database

import (
	"context"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

const (
	DefaultMySQLPort = 3306

	readOnlyQuery   = "select @@read_only"
	disableReadOnly = "set global read_only=0"
)

type MySQL struct {
	*sqlHandle
}

func NewMySQL(ds Datasource) (*MySQL, error) {
	h, err := open("mysql", mysqlDSN(ds))
	if err != nil {
		return nil, err
	}
	return &MySQL{sqlHandle: h}, nil
}

func (m *MySQL) ReadOnly(ctx context.Context) (string, error) {
	return m.GetValue(ctx, readOnlyQuery)
}

func (m *MySQL) DisableReadOnly(ctx context.Context) error {
	return m.Run(ctx, disableReadOnly)
}

func mysqlDSN(ds Datasource) string {
	port := ds.Port
	if port == 0 {
		port = DefaultMySQLPort
	}
	cfg := mysql.NewConfig()
	cfg.User = ds.User
	cfg.Passwd = ds.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(ds.Host, strconv.Itoa(port))
	cfg.Timeout = connectTimeout
	cfg.ReadTimeout = connectTimeout
	return cfg.FormatDSN()
}
