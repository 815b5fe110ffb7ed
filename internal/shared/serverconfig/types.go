package serverconfig

type Config struct {
	HTTPServer HTTPServerConfig `yaml:"httpserver" mapstructure:"httpserver"`
	MongoDB    MongoDBConfig    `yaml:"mongodb" mapstructure:"mongodb"`
	MySQL      MySQLConfig      `yaml:"mysql" mapstructure:"mysql"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Game       GameConfig       `yaml:"game" mapstructure:"game"`
	Resolver   ResolverConfig   `yaml:"resolver" mapstructure:"resolver"`
	JWTSecret  string           `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

// MySQLConfig 只服务于账本流水（journal），与实体存储无关。
type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	Charset  string `yaml:"charset" mapstructure:"charset"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// GameConfig 承载可配置的游戏规则。
type GameConfig struct {
	// PopularVoteTieBreak 普选平票策略：earliest_registration（默认）/ alphabetical。
	PopularVoteTieBreak string `yaml:"popular_vote_tie_break" mapstructure:"popular_vote_tie_break"`
	// WSSecretEnabled 控制告警推送通道是否启用 AES 加密帧。
	WSSecretEnabled bool `yaml:"ws_secret_enabled" mapstructure:"ws_secret_enabled"`
}

// ResolverConfig 承载定时任务（战斗结算、选举收盘）的参数。
type ResolverConfig struct {
	IntervalS int    `yaml:"interval_s" mapstructure:"interval_s"`
	Secret    string `yaml:"secret" mapstructure:"secret"`
	// Once 为 true 时 cmd/resolver 只跑一轮就退出（cron 模式）。
	Once bool `yaml:"once" mapstructure:"once"`
}
