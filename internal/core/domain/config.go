package domain

// NcpConfig is the configuration bundle derived on activation and persisted as ncp.json.
type NcpConfig struct {
	Version    string      `json:"version"`
	InstanceID string      `json:"instance_id"`
	NcAio      NcAioConfig `json:"nc_aio"`
}

// NcAioConfig holds the non-secret settings of the Nextcloud AIO deployment.
type NcAioConfig struct {
	Domain            string `json:"domain"`
	ApachePort        int    `json:"apache_port"`
	ApacheIPBinding   string `json:"apache_ip_binding"`
	DataDir           string `json:"data_dir"`
	MountDir          string `json:"mount_dir"`
	Timezone          string `json:"timezone"`
	PHPMemoryLimitMB  int    `json:"php_memory_limit_mb"`
	UploadLimitGB     int    `json:"upload_limit_gb"`
	ImaginaryEnabled  bool   `json:"imaginary_enabled"`
	TalkEnabled       bool   `json:"talk_enabled"`
	TalkPort          int    `json:"talk_port"`
	ClamavEnabled     bool   `json:"clamav_enabled"`
	WhiteboardEnabled bool   `json:"whiteboard_enabled"`
}

// NcAioSecrets holds the secret values derived from the master password.
// It is never persisted on its own; it only reaches disk through rendered templates.
type NcAioSecrets struct {
	DatabasePassword   string
	RedisPassword      string
	AdminPassword      string
	TurnSecret         string
	SignalingSecret    string
	TalkInternalSecret string
	OnlyofficeSecret   string
	ImaginarySecret    string
	WhiteboardSecret   string
}
