package snowflake

import (
	"fmt"
	"sync"
	"time"
)

// Snowflake is the decoded form of a generated ID.
type Snowflake struct {
	Timestamp int64
	WorkerID  int64
	Increment int64
}

const (
	timestampLength int64 = 42
	timestampPos          = 64 - timestampLength // 22
	workerLength    int64 = 10
	workerPos             = timestampPos - workerLength           // 12
	incrementLength       = 64 - (timestampLength + workerLength) // 12
)

var (
	maxWorkerValue    = int64(1)<<workerLength - 1
	maxIncrementValue = int64(1)<<incrementLength - 1

	lastIncrement, lastTimestamp int64
	mutex                        sync.Mutex

	workerID    int64 = 0
	hasWorkerID       = false
)

func Setup(id int64) error {
	if id > maxWorkerValue {
		return fmt.Errorf("worker ID value exceeds maximum value of [%d]", maxWorkerValue)
	} else if !hasWorkerID {
		workerID = id
		hasWorkerID = true
		return nil
	}

	return fmt.Errorf("worker ID for snowflake generator has been already set")
}

// Generate returns a new time-ordered unique ID. IDs generated within the
// same millisecond share a timestamp and differ in the increment bits.
func Generate() (int64, error) {
	mutex.Lock()
	defer mutex.Unlock()

	timestamp := time.Now().UnixMilli()
	if timestamp == lastTimestamp {
		lastIncrement += 1
		if lastIncrement > maxIncrementValue {
			return 0, fmt.Errorf("increment overflow after increment reached %d", lastIncrement)
		}
	} else {
		lastIncrement = 0
		lastTimestamp = timestamp
	}

	return timestamp<<timestampPos | workerID<<workerPos | lastIncrement, nil
}

func Extract(snowflakeId int64) Snowflake {
	return Snowflake{
		Timestamp: snowflakeId >> timestampPos,
		WorkerID:  (snowflakeId >> workerPos) & maxWorkerValue,
		Increment: snowflakeId & maxIncrementValue,
	}
}

// ExtractTimestamp returns the unix millisecond timestamp embedded in an ID.
func ExtractTimestamp(snowflakeId int64) int64 {
	return snowflakeId >> timestampPos
}
