package dto

import (
	"bytes"
	"encoding/json"
)

// BBExtractPage is one page of GET /extratos/v1/conta-corrente/agencia/{a}/conta/{c}.
type BBExtractPage struct {
	PageNumber      int             `json:"numeroPaginaAtual"`
	PageRecordCount int             `json:"quantidadeRegistroPaginaAtual"`
	NextPage        int             `json:"numeroPaginaProximo"`
	TotalPages      int             `json:"quantidadeTotalPagina"`
	TotalRecords    int             `json:"quantidadeTotalRegistro"`
	Entries         []BBLedgerEntry `json:"listaLancamento"`
}

// BBLedgerEntry is a raw extract row as the bank returns it.
type BBLedgerEntry struct {
	EntryTypeIndicator     string    `json:"indicadorTipoLancamento"`
	EntryDate              int64     `json:"dataLancamento"` // DDMMYYYY, leading zero may be lost
	MovementDate           int64     `json:"dataMovimento"`
	OriginAgency           int       `json:"codigoAgenciaOrigem"`
	LotNumber              int64     `json:"numeroLote"`
	DocumentNumber         int64     `json:"numeroDocumento"`
	HistoricalCode         int       `json:"codigoHistorico"`
	HistoricalText         string    `json:"textoDescricaoHistorico"`
	Value                  RawAmount `json:"valorLancamento"`
	SignIndicator          string    `json:"indicadorSinalLancamento"` // "D" or "C"
	ComplementText         string    `json:"textoInformacaoComplementar"`
	CounterpartyDocument   int64     `json:"numeroCpfCnpjContrapartida"`
	CounterpartyPersonType string    `json:"indicadorTipoPessoaContrapartida"`
	CounterpartyBank       int       `json:"codigoBancoContrapartida"`
	CounterpartyAgency     int       `json:"codigoAgenciaContrapartida"`
	CounterpartyAccount    string    `json:"numeroContaContrapartida"`
	CounterpartyAccountDV  string    `json:"textoDvContaContrapartida"`
}

// BBBalance is the response of the account balance query.
type BBBalance struct {
	Balance          RawAmount `json:"saldoAtual"`
	AvailableBalance RawAmount `json:"saldoDisponivel"`
}

// BBErrorResponse covers both the OAuth and gateway error shapes.
type BBErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
	Errors           []struct {
		Code    string `json:"codigo"`
		Message string `json:"mensagem"`
	} `json:"erros"`
}

// RawAmount keeps the bank's amount literal untouched. The API sends a JSON
// number but some gateways quote it; both decode.
type RawAmount string

func (a *RawAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}
	*a = RawAmount(b)
	return nil
}

func (a RawAmount) String() string { return string(a) }

// BBExtract is the full extract for a period after following pagination.
type BBExtract struct {
	Entries      []BBLedgerEntry
	TotalRecords int
	Pages        int
}
