package bigquery

import (
	"context"
	"fmt"

	bigquery "cloud.google.com/go/bigquery"
	pkgErrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Setting carries everything needed to open a BigQuery client against the
// warehouse project.
type Setting struct {
	BigqueryProjectID       string
	BigqueryCredentialsJSON string
}

// CreateBigqueryClient opens a client for the configured project. When no
// credentials JSON is set, application default credentials apply.
func CreateBigqueryClient(ctx *context.Context, setting *Setting) (*bigquery.Client, error) {
	if setting == nil || setting.BigqueryProjectID == "" {
		return nil, pkgErrors.New("invalid bigquery project id")
	}

	options := make([]option.ClientOption, 0, 1)
	if setting.BigqueryCredentialsJSON != "" {
		options = append(options, option.WithCredentialsJSON([]byte(setting.BigqueryCredentialsJSON)))
	}

	client, err := bigquery.NewClient(*ctx, setting.BigqueryProjectID, options...)
	if err != nil {
		log.WithError(err).Error("Failed to create bigquery client")
		return nil, pkgErrors.Wrap(err, "failed to create bigquery client")
	}
	return client, nil
}

// ExecuteQuery runs the query and appends every row to result as strings.
// Meant for small reference queries, not bulk dataset pulls.
func ExecuteQuery(ctx *context.Context, client *bigquery.Client, query string, result *[][]string) error {
	it, err := client.Query(query).Read(*ctx)
	if err != nil {
		log.WithError(err).Error("Failed to execute query on bigquery")
		return pkgErrors.Wrap(err, "failed to execute query on bigquery")
	}

	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return pkgErrors.Wrap(err, "failed to read query result row")
		}

		line := make([]string, 0, len(row))
		for _, value := range row {
			if value == nil {
				line = append(line, "")
				continue
			}
			line = append(line, fmt.Sprintf("%v", value))
		}
		*result = append(*result, line)
	}
}
