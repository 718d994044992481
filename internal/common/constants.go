package common

// Environment variable keys
const (
	EnvConfigFile        = "CONFIG_FILE"
	EnvPort              = "PORT"
	EnvPlayersPath       = "PLAYERS_PATH"
	EnvSeasonStatsPath   = "SEASON_STATS_PATH"
	EnvSalaryModelPath   = "SALARY_MODEL_PATH"
	EnvNeighborModelPath = "NEIGHBOR_MODEL_PATH"
	EnvBundlePath        = "BUNDLE_PATH"
	EnvFloorSalary       = "FLOOR_SALARY"
	EnvNeighborQuery     = "NEIGHBOR_QUERY"
	EnvNeighborLimit     = "NEIGHBOR_LIMIT"
	EnvLeaderCount       = "LEADER_COUNT"
	EnvLanguage          = "LANGUAGE"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogFormat         = "LOG_FORMAT"
	EnvReadTimeout       = "READ_TIMEOUT"
	EnvWriteTimeout      = "WRITE_TIMEOUT"
)

// Configuration defaults
const (
	DefaultPort              = 8501
	DefaultPlayersPath       = "data/2017-18_NBA_salary.csv"
	DefaultSeasonStatsPath   = "data/nba_17_18.csv"
	DefaultSalaryModelPath   = "models/salary_model.json"
	DefaultNeighborModelPath = "models/knn_model.json"
	DefaultFloorSalary       = 46080.0
	DefaultNeighborQuery     = 6
	DefaultNeighborLimit     = 5
	DefaultLeaderCount       = 20
	DefaultLanguage          = "ru"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "console"
)

// Log formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// HTTP routes
const (
	RouteIndex   = "/"
	RouteRender  = "/api/render"
	RoutePlayers = "/api/players"
	RouteSchema  = "/api/schema"
	RouteModels  = "/api/models"
	RouteChart   = "/charts/{name}.png"
	RouteWS      = "/ws"
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
