package config

type Config struct {
	Auth      AuthConf      `json:"auth"`
	Analytics AnalyticsConf `json:"analytics"`
	Jobs      JobsConf      `json:"jobs"`
}

type AuthConf struct {
	JWTSecret     string `json:"jwt_secret"`      // 签发令牌的密钥，留空则每次启动随机生成
	TokenTTLHours int    `json:"token_ttl_hours"` // 令牌有效期（小时），默认24
	AdminUsername string `json:"admin_username"`  // 首次启动引导的管理员账户
	AdminPassword string `json:"admin_password"`
	AdminEmail    string `json:"admin_email"`
}

type AnalyticsConf struct {
	RiskPerTrade float64 `json:"risk_per_trade"` // 固定风险归一化用的每笔风险（美元），默认100
	AccountSize  float64 `json:"account_size"`   // 收益率计算的账户规模，默认10000
	EquityPoints int     `json:"equity_points"`  // 权益曲线最多返回的点数，默认500
}

type JobsConf struct {
	PnlRefreshCron string `json:"pnl_refresh_cron"` // 盈亏缓存校对任务，默认每天凌晨4点
}

// 填充默认值
func (c *Config) Normalize() {
	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Analytics.RiskPerTrade <= 0 {
		c.Analytics.RiskPerTrade = 100
	}
	if c.Analytics.AccountSize <= 0 {
		c.Analytics.AccountSize = 10000
	}
	if c.Analytics.EquityPoints <= 0 {
		c.Analytics.EquityPoints = 500
	}
	if c.Jobs.PnlRefreshCron == "" {
		c.Jobs.PnlRefreshCron = "0 4 * * *"
	}
}
