package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"

	pgproto3 "github.com/jackc/pgproto3/v2"
	"github.com/lib/pq/oid"
	log "github.com/sirupsen/logrus"

	"github.com/kivisql/kivi/executor"
	"github.com/kivisql/kivi/parser"
	"github.com/kivisql/kivi/sql"
)

type Proto3Config struct {
	Address string
}

// ListenAndServeProto3 serves the PostgreSQL wire protocol v3; simple query
// messages are parsed and executed against the server's store.
func (svr *Server[K]) ListenAndServeProto3(p3Cfg Proto3Config) error {
	l, err := net.Listen("tcp", p3Cfg.Address)
	if err != nil {
		return err
	}
	svr.addListener(l)

	for {
		conn, err := l.Accept()
		if err != nil {
			svr.mutex.Lock()
			if svr.shutdown {
				err = ErrServerClosed
			}
			svr.mutex.Unlock()
			log.WithField("error", err.Error()).Error("proto3 accept")
			return err
		}

		entry := log.WithFields(log.Fields{
			"addr": conn.RemoteAddr().String(),
		})
		entry.Info("proto3 connected")

		go svr.handleProto3Conn(conn, entry)
	}
}

func (svr *Server[K]) handleProto3Conn(conn net.Conn, entry *log.Entry) {
	atomic.AddInt32(&svr.connCount, 1)
	defer atomic.AddInt32(&svr.connCount, -1)

	defer func() {
		entry.Info("proto3 disconnected")
	}()

	if !svr.trackConn(conn, true) {
		conn.Close()
		return
	}

	defer func() {
		if svr.trackConn(conn, false) {
			conn.Close()
		}
	}()

	be := pgproto3.NewBackend(pgproto3.NewChunkReader(conn), conn)

	for {
		msg, err := be.ReceiveStartupMessage()
		if err != nil {
			entry.Errorf("receive startup message: %s", err)
			return
		}

		switch msg := msg.(type) {
		case *pgproto3.StartupMessage:
			entry.Infof("protocol version: %d", msg.ProtocolVersion)
			_, err := conn.Write((&pgproto3.AuthenticationOk{}).Encode(nil))
			if err != nil {
				entry.Errorf("send authentication ok: %s", err)
				return
			}
			svr.serveProto3(conn, be, entry)
			return
		case *pgproto3.SSLRequest:
			_, err := conn.Write([]byte("N"))
			if err != nil {
				entry.Errorf("send deny SSL request: %s", err)
				return
			}
		default:
			entry.Errorf("unknown startup message: %v", msg)
			return
		}
	}
}

func (svr *Server[K]) serveProto3(conn net.Conn, be *pgproto3.Backend, entry *log.Entry) {
	for {
		// No transactions at this layer: always idle.
		_, err := conn.Write((&pgproto3.ReadyForQuery{TxStatus: 'I'}).Encode(nil))
		if err != nil {
			entry.Errorf("send ready for query: %s", err)
			return
		}

		msg, err := be.Receive()
		if err != nil {
			if err != io.EOF {
				entry.Errorf("receive: %s", err)
			}
			return
		}

		switch msg := msg.(type) {
		case *pgproto3.Query:
			svr.proto3Query(conn, msg.String, entry)
		case *pgproto3.Terminate:
			return
		default:
			entry.Errorf("unexpected message: %#v", msg)
		}
	}
}

func (svr *Server[K]) proto3Query(conn net.Conn, s string, entry *log.Entry) {
	ctx := context.Background()
	p := parser.NewParser(strings.NewReader(s), "proto3")

	var executed bool
	for {
		stmt, err := p.Parse()
		if err == io.EOF {
			if !executed {
				_, err = conn.Write((&pgproto3.EmptyQueryResponse{}).Encode(nil))
				if err != nil {
					entry.Errorf("send empty query response: %s", err)
				}
			}
			return
		}
		if err != nil {
			proto3ErrorResponse(conn, err, entry)
			return
		}

		pay, err := executor.Execute(ctx, svr.Store, stmt)
		if err != nil {
			proto3ErrorResponse(conn, err, entry)
			return
		}
		executed = true

		err = proto3Payload(conn, pay, entry)
		if err != nil {
			return
		}
	}
}

func proto3Payload(conn net.Conn, pay executor.Payload, entry *log.Entry) error {
	switch pay := pay.(type) {
	case executor.Created:
		return proto3CommandComplete(conn, "CREATE TABLE", entry)
	case executor.Dropped:
		return proto3CommandComplete(conn, "DROP TABLE", entry)
	case executor.Inserted:
		return proto3CommandComplete(conn, "INSERT 0 1", entry)
	case executor.Updated:
		return proto3CommandComplete(conn, fmt.Sprintf("UPDATE %d", pay.Count), entry)
	case executor.Deleted:
		return proto3CommandComplete(conn, fmt.Sprintf("DELETE %d", pay.Count), entry)
	case executor.Selected:
		return proto3Selected(conn, pay, entry)
	}
	panic(fmt.Sprintf("unexpected payload: %#v", pay))
}

// dataType returns the oid, size, and type modifier for a selected column,
// based on the values in the column.
func dataType(rows []sql.Row, cdx int) (oid.Oid, int16, int32) {
	for _, row := range rows {
		switch row[cdx].(type) {
		case sql.BoolValue:
			return oid.T_bool, 1, -1
		case sql.Int64Value:
			return oid.T_int8, 8, -1
		case sql.Float64Value:
			return oid.T_float8, 8, -1
		case sql.StringValue:
			return oid.T_text, -1, -1
		case sql.BytesValue:
			return oid.T_bytea, -1, -1
		}
	}
	return oid.T_text, -1, -1
}

func proto3Value(v sql.Value) []byte {
	switch v := v.(type) {
	case nil:
		return nil
	case sql.StringValue:
		return []byte(string(v))
	case sql.BytesValue:
		return []byte(v.HexString())
	}
	return []byte(v.String())
}

func proto3Selected(conn net.Conn, sel executor.Selected, entry *log.Entry) error {
	fields := make([]pgproto3.FieldDescription, 0, len(sel.Columns))
	for cdx, col := range sel.Columns {
		oid, sz, tmod := dataType(sel.Rows, cdx)
		fields = append(fields,
			pgproto3.FieldDescription{
				Name:         []byte(col.String()),
				DataTypeOID:  uint32(oid),
				DataTypeSize: sz,
				TypeModifier: tmod,
				Format:       0, // text format
			})
	}
	_, err := conn.Write((&pgproto3.RowDescription{Fields: fields}).Encode(nil))
	if err != nil {
		entry.Errorf("send row description: %s", err)
		return err
	}

	values := make([][]byte, len(sel.Columns))
	for _, row := range sel.Rows {
		for vdx, v := range row {
			values[vdx] = proto3Value(v)
		}
		_, err := conn.Write((&pgproto3.DataRow{Values: values}).Encode(nil))
		if err != nil {
			entry.Errorf("send data row: %s", err)
			return err
		}
	}

	return proto3CommandComplete(conn, fmt.Sprintf("SELECT %d", len(sel.Rows)), entry)
}

func proto3ErrorResponse(conn net.Conn, err error, entry *log.Entry) {
	_, cerr := conn.Write((&pgproto3.ErrorResponse{
		Severity: "ERROR",
		Message:  err.Error(),
	}).Encode(nil))
	if cerr != nil {
		entry.Errorf("send error response: %s", cerr)
	}
}

func proto3CommandComplete(conn net.Conn, cmdTag string, entry *log.Entry) error {
	_, err := conn.Write((&pgproto3.CommandComplete{CommandTag: []byte(cmdTag)}).Encode(nil))
	if err != nil {
		entry.Errorf("send command complete: %s", err)
	}
	return err
}
