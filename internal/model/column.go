package model

import (
	"errors"
	"fmt"
)

var ErrUnknownColumn = errors.New("unknown search column")

// SearchColumn is a project column that free-text search may target.
// Only the constants below are valid; the numeric id is not searchable.
type SearchColumn string

const (
	ColumnProjectName              SearchColumn = "project_name"
	ColumnDescriptionShort         SearchColumn = "description_short"
	ColumnDescriptionFull          SearchColumn = "description_full"
	ColumnRewardsAmount            SearchColumn = "rewards_amount"
	ColumnRewardsApproximateAmount SearchColumn = "rewards_approximate_amount"
	ColumnRewardsDistributionDate  SearchColumn = "rewards_distribution_date"
	ColumnLinksWebsite             SearchColumn = "links_website"
	ColumnLinksTwitter             SearchColumn = "links_twitter"
	ColumnLinksTelegram            SearchColumn = "links_telegram"
	ColumnLinksDiscord             SearchColumn = "links_discord"
	ColumnStatus                   SearchColumn = "status"
	ColumnLastUpdated              SearchColumn = "last_updated"
)

var searchColumns = []SearchColumn{
	ColumnProjectName,
	ColumnDescriptionShort,
	ColumnDescriptionFull,
	ColumnRewardsAmount,
	ColumnRewardsApproximateAmount,
	ColumnRewardsDistributionDate,
	ColumnLinksWebsite,
	ColumnLinksTwitter,
	ColumnLinksTelegram,
	ColumnLinksDiscord,
	ColumnStatus,
	ColumnLastUpdated,
}

func SearchColumns() []SearchColumn {
	out := make([]SearchColumn, len(searchColumns))
	copy(out, searchColumns)
	return out
}

func (c SearchColumn) Valid() bool {
	for _, known := range searchColumns {
		if c == known {
			return true
		}
	}
	return false
}

// ParseSearchColumn matches name exactly against the allow-list.
func ParseSearchColumn(name string) (SearchColumn, error) {
	c := SearchColumn(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return c, nil
}
