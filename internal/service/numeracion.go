package service

import (
	"sort"
	"time"

	"snp/internal/model"
)

// TicketNumerado is a ticket with its derived number. The number is the
// ticket's 1-based rank by creation time and is never persisted.
type TicketNumerado struct {
	Key    string
	Numero int
	Ticket model.Ticket
}

// Numerar orders a fetched collection ascending by createdAtIso (missing or
// unparseable instants count as the epoch, ties by key) and numbers it.
// desc is the exact reverse of asc, numbers preserved.
func Numerar(coleccion map[string]model.Ticket) (asc, desc []TicketNumerado) {
	type entrada struct {
		key string
		at  time.Time
		t   model.Ticket
	}
	entradas := make([]entrada, 0, len(coleccion))
	for key, t := range coleccion {
		// Older documents do not carry their own key.
		t.FirebaseKey = key
		entradas = append(entradas, entrada{key: key, at: instante(t.CreatedAtIso), t: t})
	}
	sort.Slice(entradas, func(i, j int) bool {
		if !entradas[i].at.Equal(entradas[j].at) {
			return entradas[i].at.Before(entradas[j].at)
		}
		return entradas[i].key < entradas[j].key
	})

	asc = make([]TicketNumerado, len(entradas))
	desc = make([]TicketNumerado, len(entradas))
	for i, e := range entradas {
		n := TicketNumerado{Key: e.key, Numero: i + 1, Ticket: e.t}
		asc[i] = n
		desc[len(entradas)-1-i] = n
	}
	return asc, desc
}

func instante(iso string) time.Time {
	if iso == "" {
		return time.Unix(0, 0).UTC()
	}
	at, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return at
}
