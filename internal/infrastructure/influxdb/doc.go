// Package influxdb records designer run statistics in InfluxDB.
//
// Every successful export or import writes one point to the compile_runs
// measurement, tagged by project, direction and format, with the entity
// counts, the number of items skipped and the run duration as fields.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteCompileStats(influxdb.RunStats{ProjectID: 42, Direction: "export", Format: "roehn"})
//
// Writes are batched according to influxdb.batch_size and
// influxdb.flush_interval. Write failures arrive on the SetOnError callback.
package influxdb
