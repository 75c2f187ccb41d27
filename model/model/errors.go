package model

import (
	"errors"
	"fmt"
)

// DataShapeError is returned when a required column is absent from an
// input dataset. Fatal to the transformation that received the dataset.
type DataShapeError struct {
	Dataset string
	Column  string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("dataset %s missing required column %s", e.Dataset, e.Column)
}

func NewDataShapeError(dataset, column string) *DataShapeError {
	return &DataShapeError{Dataset: dataset, Column: column}
}

func IsDataShapeError(err error) bool {
	var shapeErr *DataShapeError
	return errors.As(err, &shapeErr)
}

// Dataset names used on shape errors and log fields.
const (
	DatasetCampaignCost = "campaign_cost"
	DatasetAppLaunch    = "cr_app_launch"
	DatasetProgress     = "cr_user_progress"
)

// Column names shared between the warehouse loaders and shape errors.
const (
	ColumnCampaignID   = "campaign_id"
	ColumnCampaignName = "campaign_name"
	ColumnSegmentDate  = "segment_date"
	ColumnCost         = "cost"
	ColumnCRUserID     = "cr_user_id"
	ColumnUserPseudoID = "user_pseudo_id"
	ColumnCountry      = "country"
	ColumnAppLanguage  = "app_language"
	ColumnFirstOpen    = "first_open"
)
