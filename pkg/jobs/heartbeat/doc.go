// Package heartbeat provides a ready-made periodic job that publishes a
// liveness record to Redis.
//
// Each run refreshes Key with "<instance> <unix-nanos>" and a TTL, and
// increments the instance's counter in the hash Key+":beats". A monitor
// treats the process as dead once Key expires.
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	hb, err := heartbeat.New(heartbeat.Config{
//		Redis: rdb,
//		Key:   "svc:alive",
//		TTL:   30 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	_ = s.Register("heartbeat", 10*time.Second, hb)
package heartbeat
