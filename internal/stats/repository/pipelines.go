package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var terminalStatuses = bson.A{"completed", "complete", "failed"}
var successStatuses = bson.A{"completed", "complete"}

// terminalEventWindow matches jobs whose terminal event falls after the
// cutoff: completed_at for successes, last_pinged for failures that never
// reached completion.
func terminalEventWindow(since time.Time) bson.M {
	return bson.M{
		"status": bson.M{"$in": terminalStatuses},
		"$or": bson.A{
			bson.M{"completed_at": bson.M{"$gte": since}},
			bson.M{
				"status":      "failed",
				"last_pinged": bson.M{"$gte": since},
			},
		},
	}
}

// dailyStatisticsPipeline produces per-day rollups. The encoding time is
// derived from the store's own timestamps (completed_at - assigned_date)
// rather than the worker-reported encoding_time field, since the latter is
// trusted client input.
func dailyStatisticsPipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: terminalEventWindow(since)}},
		{{Key: "$addFields", Value: bson.M{
			"calculated_encoding_time": bson.M{
				"$cond": bson.A{
					bson.M{"$and": bson.A{
						bson.M{"$ne": bson.A{"$assigned_date", nil}},
						bson.M{"$ne": bson.A{"$completed_at", nil}},
					}},
					bson.M{"$divide": bson.A{
						bson.M{"$subtract": bson.A{"$completed_at", "$assigned_date"}},
						1000, // milliseconds to seconds
					}},
					0,
				},
			},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"date": bson.M{
					"$dateToString": bson.M{
						"format": "%Y-%m-%d",
						"date":   bson.M{"$ifNull": bson.A{"$completed_at", "$last_pinged"}},
					},
				},
				"encoder_id": "$assigned_to",
				"quality":    "$current_quality",
				"status":     "$status",
			},
			"count":               bson.M{"$sum": 1},
			"total_encoding_time": bson.M{"$sum": "$calculated_encoding_time"},
			"avg_encoding_time":   bson.M{"$avg": "$calculated_encoding_time"},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$_id.date",
			"videos_encoded": bson.M{"$sum": "$count"},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$in": bson.A{"$_id.status", successStatuses}},
					"$count",
					0,
				},
			}},
			"failed": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$_id.status", "failed"}},
					"$count",
					0,
				},
			}},
			"by_encoder": bson.M{"$push": bson.M{
				"encoder_id": "$_id.encoder_id",
				"count":      "$count",
			}},
			"by_quality": bson.M{"$push": bson.M{
				"quality": "$_id.quality",
				"count":   "$count",
			}},
			"total_encoding_time":   bson.M{"$sum": "$total_encoding_time"},
			"average_encoding_time": bson.M{"$avg": "$avg_encoding_time"},
		}}},
		{{Key: "$addFields", Value: bson.M{
			// Explicit zero guard: a day with no jobs must report 0, not
			// a divide-by-zero.
			"success_rate": bson.M{
				"$cond": bson.A{
					bson.M{"$gt": bson.A{"$videos_encoded", 0}},
					bson.M{"$divide": bson.A{"$completed", "$videos_encoded"}},
					0,
				},
			},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
}

// encoderPerformancePipeline groups terminal jobs by encoder. The
// encoding_time sums use the worker-reported field with a null default,
// matching what the performance view historically displayed.
func encoderPerformancePipeline(since time.Time, encoderID string) mongo.Pipeline {
	match := terminalEventWindow(since)
	if encoderID != "" {
		match["assigned_to"] = encoderID
	} else {
		match["assigned_to"] = bson.M{"$exists": true, "$ne": nil}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": "$assigned_to",
			"jobs_completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$in": bson.A{"$status", successStatuses}},
					1,
					0,
				},
			}},
			"jobs_failed": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$status", "failed"}},
					1,
					0,
				},
			}},
			"total_jobs":            bson.M{"$sum": 1},
			"total_encoding_time":   bson.M{"$sum": bson.M{"$ifNull": bson.A{"$encoding_time", 0}}},
			"average_encoding_time": bson.M{"$avg": bson.M{"$ifNull": bson.A{"$encoding_time", 0}}},
			"success_rate": bson.M{"$avg": bson.M{
				"$cond": bson.A{
					bson.M{"$in": bson.A{"$status", successStatuses}},
					1,
					0,
				},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "jobs_completed", Value: -1}}}},
	}
}
