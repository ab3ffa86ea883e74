package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"

	"store-service/internal/notify"
)

const TopicOrderCreated = `store-service.order-created`

// Encode keys the record by order id so every event of one order lands on one partition.
func Encode(e notify.Event) (key, value []byte, err error) {
	value, err = json.Marshal(e)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return []byte(strconv.FormatInt(e.OrderID, 10)), value, nil
}
