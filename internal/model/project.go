package model

type Project struct {
	ID                       int64  `db:"id" json:"id"`
	ProjectName              string `db:"project_name" json:"project_name"`
	DescriptionShort         string `db:"description_short" json:"description_short"`
	DescriptionFull          string `db:"description_full" json:"description_full"`
	RewardsAmount            string `db:"rewards_amount" json:"rewards_amount"`
	RewardsApproximateAmount string `db:"rewards_approximate_amount" json:"rewards_approximate_amount"`
	RewardsDistributionDate  string `db:"rewards_distribution_date" json:"rewards_distribution_date"`
	LinksWebsite             string `db:"links_website" json:"links_website"`
	LinksTwitter             string `db:"links_twitter" json:"links_twitter"`
	LinksTelegram            string `db:"links_telegram" json:"links_telegram"`
	LinksDiscord             string `db:"links_discord" json:"links_discord"`
	Status                   string `db:"status" json:"status"`
	LastUpdated              string `db:"last_updated" json:"last_updated"`
}

// ProjectCreate is one decoded source record, ready to be inserted together
// with its requirements.
type ProjectCreate struct {
	ProjectName              string
	DescriptionShort         string
	DescriptionFull          string
	RewardsAmount            string
	RewardsApproximateAmount string
	RewardsDistributionDate  string
	LinksWebsite             string
	LinksTwitter             string
	LinksTelegram            string
	LinksDiscord             string
	Status                   string
	LastUpdated              string
	Requirements             []Requirement
}

type Requirement struct {
	Task       string `db:"task" json:"task"`
	Difficulty string `db:"difficulty" json:"difficulty"`
	Deadline   string `db:"deadline" json:"deadline"`
}
