// Package config loads runtime configuration for the POS terminal.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file named by -c/-config, or by $POSQUEUE_CONFIG.
//     Files ending in .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	server_endpoint_addr: 10.0.0.5:50051
//	transport: grpc
//	database_path: /var/lib/posqueue/orders.db
//	online_check_interval: 3s
//	sync_interval: 30s
//	max_retries: 3
//	dead_letter:
//	  bucket: pos-failed-orders
//	  base_endpoint: http://minio:9000
package config
