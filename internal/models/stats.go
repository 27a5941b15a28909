package models

type EncoderCount struct {
	EncoderID string `json:"encoder_id" bson:"encoder_id"`
	Count     int64  `json:"count" bson:"count"`
}

type QualityCount struct {
	Quality string `json:"quality" bson:"quality"`
	Count   int64  `json:"count" bson:"count"`
}

// DailyStat is one day of rollup produced by the statistics pipeline.
// Durations are seconds; SuccessRate is a fraction in [0,1].
type DailyStat struct {
	Date                string         `json:"date" bson:"_id"`
	VideosEncoded       int64          `json:"videos_encoded" bson:"videos_encoded"`
	Completed           int64          `json:"completed" bson:"completed"`
	Failed              int64          `json:"failed" bson:"failed"`
	ByEncoder           []EncoderCount `json:"by_encoder" bson:"by_encoder"`
	ByQuality           []QualityCount `json:"by_quality" bson:"by_quality"`
	TotalEncodingTime   float64        `json:"total_encoding_time" bson:"total_encoding_time"`
	AverageEncodingTime float64        `json:"average_encoding_time" bson:"average_encoding_time"`
	SuccessRate         float64        `json:"success_rate" bson:"success_rate"`
}

// EncoderPerformance summarizes one encoder over a trailing window.
type EncoderPerformance struct {
	EncoderID           string  `json:"encoder_id" bson:"_id"`
	JobsCompleted       int64   `json:"jobs_completed" bson:"jobs_completed"`
	JobsFailed          int64   `json:"jobs_failed" bson:"jobs_failed"`
	TotalJobs           int64   `json:"total_jobs" bson:"total_jobs"`
	TotalEncodingTime   float64 `json:"total_encoding_time" bson:"total_encoding_time"`
	AverageEncodingTime float64 `json:"average_encoding_time" bson:"average_encoding_time"`
	SuccessRate         float64 `json:"success_rate" bson:"success_rate"`
}
