// Package archive mirrors feed-ingested bars into Postgres.
//
// The CSV store remains the system of record; the archive is a query-side
// copy, deduplicated on (symbol, asset_class, bar_ts, source) so repeated
// feed pulls collapse to one row. Every row carries the run id of the
// bridge process that ingested it. Expected table:
//
//	CREATE TABLE bars (
//	    run_id      UUID             NOT NULL,
//	    symbol      TEXT             NOT NULL,
//	    asset_class TEXT             NOT NULL,
//	    bar_ts      BIGINT           NOT NULL,
//	    open        DOUBLE PRECISION NOT NULL,
//	    high        DOUBLE PRECISION NOT NULL,
//	    low         DOUBLE PRECISION NOT NULL,
//	    close       DOUBLE PRECISION NOT NULL,
//	    volume      DOUBLE PRECISION NOT NULL,
//	    price       DOUBLE PRECISION NOT NULL,
//	    source      TEXT             NOT NULL,
//	    ingested_at BIGINT           NOT NULL,
//	    PRIMARY KEY (symbol, asset_class, bar_ts, source)
//	);
package archive
