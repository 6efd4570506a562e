package cfg

type Cfg struct {
	// Storage
	DBPath      string
	WatchersDir string

	// HTTP server
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Polling
	PollInterval int // minutes
	TurboMode    bool
	WorkerCount  int

	// Providers
	NewsAPIKey       string
	GNewsKey         string
	NewsDataKey      string
	ProxyURL         string
	RequestTimeout   int // seconds
	HostRateInterval int // milliseconds
	ExtractContent   bool

	// Notifications
	NATSURL     string
	NATSSubject string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
