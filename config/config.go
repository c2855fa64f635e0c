package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Data          DataConfig          `yaml:"data"`
	Session       SessionConfig       `yaml:"session"`
	Questionnaire QuestionnaireConfig `yaml:"questionnaire"`
	Glossary      GlossaryConfig      `yaml:"glossary"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type DataConfig struct {
	Dir          string `yaml:"dir"`
	WorkbookPath string `yaml:"workbook_path"`
	LogoPath     string `yaml:"logo_path"`
}

type SessionConfig struct {
	Secret string `yaml:"secret"`
	MaxAge int    `yaml:"max_age"` // 秒
	Secure bool   `yaml:"secure"`
}

// RegionConfig 某个类别在工作簿中的筛选区域，行列均从 1 开始
type RegionConfig struct {
	Sheet          string `yaml:"sheet" json:"sheet"`
	HeaderRow      int    `yaml:"header_row" json:"header_row"`
	DataStartRow   int    `yaml:"data_start_row" json:"data_start_row"`
	SolutionColumn int    `yaml:"solution_column" json:"solution_column"`
}

type QuestionnaireConfig struct {
	NotRelevant      string                           `yaml:"not_relevant"`
	NoTokens         []string                         `yaml:"no_tokens"`
	DefaultSortOrder int                              `yaml:"default_sort_order"`
	Special          domain.SpecialQuestions          `yaml:"special"`
	Regions          map[domain.Category]RegionConfig `yaml:"regions"`
	Title            string                           `yaml:"title"`
}

type GlossaryConfig struct {
	Sheet             string `yaml:"sheet"`
	FirstRow          int    `yaml:"first_row"`
	TermColumn        int    `yaml:"term_column"`
	ExplanationColumn int    `yaml:"explanation_column"`
	SuggestLimit      int    `yaml:"suggest_limit"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

// Default 返回内置默认配置，不读取配置文件和环境变量
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/energyaudit.db",
		},
		Data: DataConfig{
			Dir:          "./data",
			WorkbookPath: "./data/Daten.xlsx",
			LogoPath:     "./data/logo.png",
		},
		Session: SessionConfig{
			Secret: "change-me",
			MaxAge: 7 * 24 * 3600,
		},
		Questionnaire: QuestionnaireConfig{
			NotRelevant:      "Nicht relevant",
			NoTokens:         []string{"nein", "no"},
			DefaultSortOrder: 999,
			Special: domain.SpecialQuestions{
				Voltage:       "Versorgungsspannung",
				HarmonicOrder: "Maximale Ordnung der Oberschwingungen",
			},
			Regions: map[domain.Category]RegionConfig{
				domain.Transformer: {Sheet: "Transformator", HeaderRow: 14, DataStartRow: 15, SolutionColumn: 27},
				domain.Feeder:      {Sheet: "Einspeisung", HeaderRow: 14, DataStartRow: 15, SolutionColumn: 27},
				domain.Outlet:      {Sheet: "Abgang", HeaderRow: 14, DataStartRow: 15, SolutionColumn: 27},
				domain.OutletSub:   {Sheet: "Unterabgang", HeaderRow: 14, DataStartRow: 15, SolutionColumn: 27},
			},
			Title: "Fragebogen zur ISO50001",
		},
		Glossary: GlossaryConfig{
			Sheet:             "Begriffe",
			FirstRow:          14,
			TermColumn:        4,
			ExplanationColumn: 8,
			SuggestLimit:      10,
		},
	}
}

func loadConfig() *Config {
	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = port
	}

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		config.Data.Dir = dataDir
	}
	if workbook := os.Getenv("WORKBOOK_PATH"); workbook != "" {
		config.Data.WorkbookPath = workbook
	}
	if config.Data.WorkbookPath == "" {
		config.Data.WorkbookPath = filepath.Join(config.Data.Dir, "Daten.xlsx")
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.Session.Secret = secret
	}
	if secure := os.Getenv("SESSION_SECURE"); secure != "" {
		if v, err := strconv.ParseBool(secure); err == nil {
			config.Session.Secure = v
		}
	}

	return config
}

// Region 返回类别的区域配置，未配置时 ok 为 false
func (q QuestionnaireConfig) Region(c domain.Category) (RegionConfig, bool) {
	r, ok := q.Regions[c]
	return r, ok && r.Sheet != ""
}
