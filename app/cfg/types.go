package cfg

type Cfg struct {
	// Persistence configuration
	DBPath    string
	RedisAddr string

	// Application configuration
	RoutesDir    string
	Port         string
	WorkerCount  int
	PollInterval int // minutes
	APIAccessKey string

	// Relay tuning
	RetentionHours int
	SendDelayMs    int
	SendTimeout    int // seconds
	ChartTimeout   int // seconds

	// Telegram channel kind
	TelegramToken   string
	TelegramChatIDs []string

	// LINE channel kind
	LineToken      string
	LineRecipients []string

	// Chart provider
	ChartImgKey      string
	ChartImgInterval string

	// News source
	NewsAPIBase string
	NewsAPIKey  string
	NewsLocale  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
