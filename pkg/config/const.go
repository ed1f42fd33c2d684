package config

// host level property keys
const (
	Host                    = "host"
	UserID                  = "userid"
	Replicator              = "replicator"
	HomeDirectory           = "home_directory"
	CurrentReleaseDirectory = "current_release_directory"
	ReleasesDirectory       = "releases_directory"
	ConfigDirectory         = "config_directory"
	LogsDirectory           = "logs_directory"
	MetadataDirectory       = "metadata_directory"
	ReplMetadataDirectory   = "repl_metadata_directory"
	JavaTLSKeystorePath     = "java_tls_keystore_path"
	JavaJGroupsKeystorePath = "java_jgroups_keystore_path"
)

// replication service property keys, addressed as repl_services/<alias>/<key>
const (
	ReplServices         = "repl_services"
	Defaults             = "defaults"
	DeploymentService    = "deployment_service"
	ReplBackupStorageDir = "repl_backup_storage_dir"
	ReplRelayLogDir      = "repl_relay_directory"
	ReplLogDir           = "repl_svc_thl_dir"
	ReplDBServiceStart   = "repl_datasource_boot_script"
	DatasourceType       = "repl_datasource_type"
	DatasourceHost       = "repl_datasource_host"
	DatasourcePort       = "repl_datasource_port"
	DatasourceUser       = "repl_datasource_user"
	DatasourcePassword   = "repl_datasource_password"
)

// directories below the home directory that only the installer creates
const (
	LogsDirectoryName     = "service_logs"
	MetadataDirectoryName = "metadata"
	ShareDirectoryName    = "share"
)

const (
	DefaultUser    = "tungsten"
	DefaultSSHPort = 22

	// serviceAlias is only visible while expanding replication service templates.
	serviceAlias = "service_alias"
)

// templates holds the install-time value of every key that has one. Keys of
// replication services use '*' in place of the alias.
var templates = map[string]string{
	CurrentReleaseDirectory: "${home_directory}/tungsten",
	ReleasesDirectory:       "${home_directory}/releases",
	ConfigDirectory:         "${home_directory}/conf",
	LogsDirectory:           "${home_directory}/service_logs",
	MetadataDirectory:       "${home_directory}/metadata",
	ReplMetadataDirectory:   "${home_directory}/metadata/replicator",
	JavaTLSKeystorePath:     "${home_directory}/share/tls.ks",
	JavaJGroupsKeystorePath: "${home_directory}/share/jgroups.ks",

	ReplServices + ".*." + DeploymentService:    "${service_alias}",
	ReplServices + ".*." + ReplBackupStorageDir: "${home_directory}/backups/${deployment_service}",
	ReplServices + ".*." + ReplRelayLogDir:      "${home_directory}/relay/${deployment_service}",
	ReplServices + ".*." + ReplLogDir:           "${home_directory}/thl/${deployment_service}",
	ReplServices + ".*." + ReplDBServiceStart:   "/etc/init.d/mysql",
	ReplServices + ".*." + DatasourceType:       "mysql",
	ReplServices + ".*." + DatasourceHost:       "127.0.0.1",
	ReplServices + ".*." + DatasourceUser:       "tungsten",
}
