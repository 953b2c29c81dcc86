package config

type Config struct {
	JWT      JWTConf      `json:"jwt"`
	Upload   UploadConf   `json:"upload"`
	News     NewsConf     `json:"news"`
	Telegram TelegramConf `json:"telegram"`
}

type JWTConf struct {
	Secret          string `json:"secret"`           // random per-process secret when empty
	ExpirationHours int    `json:"expiration_hours"` // default 24
}

type UploadConf struct {
	Dir              string `json:"dir"`                 // screenshot storage directory, default ./uploads
	MaxSizeMB        int    `json:"max_size_mb"`         // per-file limit, default 5
	MaxFilesPerTrade int    `json:"max_files_per_trade"` // default 5
}

type NewsConf struct {
	Enabled         bool   `json:"enabled"`           // start the background refresh worker
	CacheTTLMinutes int    `json:"cache_ttl_minutes"` // default 5
	ProxyURL        string `json:"proxy_url"`         // e.g. http://127.0.0.1:7890
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}
