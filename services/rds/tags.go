package rds

import (
	"maps"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdsTypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
)

const nameTagKey = "Name"

// ConvertTagsToRDSTags converts a tag map into RDS tags ordered by key.
func ConvertTagsToRDSTags(tags map[string]string) []rdsTypes.Tag {
	var rdsTags []rdsTypes.Tag
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		rdsTags = append(rdsTags, rdsTypes.Tag{
			Key:   aws.String(k),
			Value: aws.String(tags[k]),
		})
	}
	return rdsTags
}

// instanceTags adds the Name tag for identifier to the caller's tags.
// An explicit Name tag from the caller wins.
func instanceTags(identifier string, tags map[string]string) map[string]string {
	merged := map[string]string{nameTagKey: identifier}
	maps.Copy(merged, tags)
	return merged
}
