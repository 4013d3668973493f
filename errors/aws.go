package errors

import (
	"errors"

	"code.cloudfoundry.org/lager"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// AWSErrorData extracts the error code, message and request details from
// an SDK error so they can be attached to a log line.
func AWSErrorData(err error) lager.Data {
	data := lager.Data{}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		data["code"] = apiErr.ErrorCode()
		data["message"] = apiErr.ErrorMessage()
		data["fault"] = apiErr.ErrorFault().String()
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		// A service error occurred
		data["status_code"] = respErr.HTTPStatusCode()
		data["request_id"] = respErr.ServiceRequestID()
	}

	return data
}

// LogAWSError logs err under action together with any AWS error details
// and the caller supplied data.
func LogAWSError(logger lager.Logger, action string, err error, data ...lager.Data) {
	merged := AWSErrorData(err)
	for _, d := range data {
		for k, v := range d {
			merged[k] = v
		}
	}
	logger.Error(action, err, merged)
}
