// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regs holds the AD5940 register map.
package regs // import "github.com/go-lpc/bioz/ad5940/internal/regs"

// AFE block. Registers in [AFE_BASE, AFE_LAST] are reachable from
// the sequencer.
const (
	AFE_BASE = 0x2000
	AFE_LAST = 0x21FC

	REG_AFE_AFECON        = 0x2000
	REG_AFE_SEQCON        = 0x2004
	REG_AFE_FIFOCON       = 0x2008
	REG_AFE_SWCON         = 0x200C
	REG_AFE_HSDACCON      = 0x2010
	REG_AFE_WGCON         = 0x2014
	REG_AFE_WGFCW         = 0x2030
	REG_AFE_WGPHASE       = 0x2034
	REG_AFE_WGOFFSET      = 0x2038
	REG_AFE_WGAMPLITUDE   = 0x203C
	REG_AFE_ADCFILTERCON  = 0x2044
	REG_AFE_LPREFBUFCON   = 0x2050
	REG_AFE_SYNCEXTDEVICE = 0x2054
	REG_AFE_SEQCRC        = 0x2060
	REG_AFE_SEQCNT        = 0x2064
	REG_AFE_DATAFIFORD    = 0x206C
	REG_AFE_CMDFIFOWRITE  = 0x2070
	REG_AFE_ADCDAT        = 0x2074
	REG_AFE_DFTREAL       = 0x2078
	REG_AFE_DFTIMAG       = 0x207C
	REG_AFE_AFEGENINTSTA  = 0x209C
	REG_AFE_DFTCON        = 0x20D0
	REG_AFE_LPTIASW0      = 0x20E4
	REG_AFE_LPTIACON0     = 0x20EC
	REG_AFE_HSRTIACON     = 0x20F0
	REG_AFE_DE0RESCON     = 0x20F8
	REG_AFE_HSTIACON      = 0x20FC
	REG_AFE_SEQSLPLOCK    = 0x2118
	REG_AFE_SEQTRGSLP     = 0x211C
	REG_AFE_LPDACDAT0     = 0x2120
	REG_AFE_LPDACSW0      = 0x2124
	REG_AFE_LPDACCON0     = 0x2128
	REG_AFE_DSWFULLCON    = 0x2150
	REG_AFE_NSWFULLCON    = 0x2154
	REG_AFE_PSWFULLCON    = 0x2158
	REG_AFE_TSWFULLCON    = 0x215C
	REG_AFE_BUFSENCON     = 0x2180
	REG_AFE_ADCCON        = 0x21A8
	REG_AFE_SEQ0INFO      = 0x21CC
	REG_AFE_SEQ2INFO      = 0x21D0
	REG_AFE_CMDFIFOWADDR  = 0x21D4
	REG_AFE_CMDDATACON    = 0x21D8
	REG_AFE_DATAFIFOTHRES = 0x21E0
	REG_AFE_SEQ3INFO      = 0x21E4
	REG_AFE_SEQ1INFO      = 0x21E8
	REG_AFE_REPEATADCCNV  = 0x21F0

	REG_AFE_FIFOCNTSTA = 0x2200
)

// Chip identification, clocking and sequence trigger.
const (
	REG_AFECON_ADIID   = 0x0400
	REG_AFECON_CHIPID  = 0x0404
	REG_AFECON_CLKCON0 = 0x0408
	REG_AFECON_CLKEN1  = 0x0410
	REG_AFECON_CLKSEL  = 0x0414
	REG_AFECON_TRIGSEQ = 0x0430

	ADIID_VALUE  = 0x4144
	CHIPID_VALUE = 0x5502
)

// Wake-up timer.
const (
	REG_WUPTMR_CON      = 0x0800
	REG_WUPTMR_SEQORDER = 0x0804
	REG_WUPTMR_SEQ0WUPL = 0x0808
	REG_WUPTMR_SEQ0WUPH = 0x080C
	REG_WUPTMR_SEQ0SLPL = 0x0810
	REG_WUPTMR_SEQ0SLPH = 0x0814

	// stride between the wakeup/sleep register groups of two sequences.
	WUPTMR_SEQ_STRIDE = 0x10

	BITM_WUPTMR_CON_EN      = 1 << 0
	BITP_WUPTMR_CON_ENDSEQ  = 1
	BITM_WUPTMR_CON_ENDSEQ  = 0x7 << BITP_WUPTMR_CON_ENDSEQ
	BITP_WUPTMR_SEQORDER_SZ = 2
)

// Interrupt controller.
const (
	REG_INTC_INTCPOL   = 0x3000
	REG_INTC_INTCCLR   = 0x3004
	REG_INTC_INTCSEL0  = 0x3008
	REG_INTC_INTCSEL1  = 0x300C
	REG_INTC_INTCFLAG0 = 0x3010
	REG_INTC_INTCFLAG1 = 0x3014
)

// Interrupt sources.
const (
	INTSRC_ADCRDY         = 1 << 0
	INTSRC_DFTRDY         = 1 << 1
	INTSRC_SINC2RDY       = 1 << 2
	INTSRC_TEMPRDY        = 1 << 3
	INTSRC_CUSTOMINT0     = 1 << 9
	INTSRC_CUSTOMINT1     = 1 << 10
	INTSRC_CUSTOMINT2     = 1 << 11
	INTSRC_CUSTOMINT3     = 1 << 12
	INTSRC_BOOTLDDONE     = 1 << 13
	INTSRC_ENDSEQ         = 1 << 15
	INTSRC_SEQTIMEOUT     = 1 << 16
	INTSRC_SEQTIMEOUTERR  = 1 << 17
	INTSRC_CMDFIFOFULL    = 1 << 18
	INTSRC_CMDFIFOEMPTY   = 1 << 19
	INTSRC_DATAFIFOFULL   = 1 << 23
	INTSRC_DATAFIFOEMPTY  = 1 << 24
	INTSRC_DATAFIFOTHRESH = 1 << 25
	INTSRC_DATAFIFOOF     = 1 << 26
	INTSRC_DATAFIFOUF     = 1 << 27
	INTSRC_ALLINT         = 0xFFFFFFFF
)

// AFECON bits.
const (
	AFECTRL_HPREFPWR   = 1 << 5
	AFECTRL_HSDACPWR   = 1 << 6
	AFECTRL_ADCPWR     = 1 << 7
	AFECTRL_ADCCNV     = 1 << 8
	AFECTRL_EXTBUFPWR  = 1 << 9
	AFECTRL_INAMPPWR   = 1 << 10
	AFECTRL_HSTIAPWR   = 1 << 11
	AFECTRL_TEMPSPWR   = 1 << 12
	AFECTRL_TEMPCNV    = 1 << 13
	AFECTRL_WG         = 1 << 14
	AFECTRL_DFT        = 1 << 15
	AFECTRL_SINC2NOTCH = 1 << 16
	AFECTRL_ALDOLIMIT  = 1 << 19
	AFECTRL_DACREFPWR  = 1 << 20
	AFECTRL_DCBUFPWR   = 1 << 21
	AFECTRL_ALL        = 0x39FFE0
)

// SEQCON, sequencer memory and data FIFO.
const (
	BITM_SEQCON_SEQEN    = 1 << 0
	BITP_SEQCON_SEQWRTMR = 8
	BITM_SEQCON_SEQWRTMR = 0xFF << BITP_SEQCON_SEQWRTMR

	BITP_CMDDATACON_CMDMEMMDE  = 0
	BITM_CMDDATACON_CMDMEMMDE  = 0x7 << BITP_CMDDATACON_CMDMEMMDE
	BITP_CMDDATACON_CMDMEMSEL  = 3
	BITM_CMDDATACON_CMDMEMSEL  = 0x7 << BITP_CMDDATACON_CMDMEMSEL
	BITP_CMDDATACON_DATAMEMSEL = 6
	BITM_CMDDATACON_DATAMEMSEL = 0x7 << BITP_CMDDATACON_DATAMEMSEL
	BITP_CMDDATACON_DATAMEMMDE = 9
	BITM_CMDDATACON_DATAMEMMDE = 0x7 << BITP_CMDDATACON_DATAMEMMDE

	MEMMODE_FIFO = 2
	MEMMODE_SEQ  = 1

	BITM_FIFOCON_DATAFIFOEN     = 1 << 11
	BITP_FIFOCON_DATAFIFOSRCSEL = 13
	BITM_FIFOCON_DATAFIFOSRCSEL = 0x7 << BITP_FIFOCON_DATAFIFOSRCSEL

	BITP_DATAFIFOTHRES_HIGHTHRES = 16
	BITM_DATAFIFOTHRES_HIGHTHRES = 0x7FF << BITP_DATAFIFOTHRES_HIGHTHRES

	BITP_FIFOCNTSTA_DATAFIFOCNT = 16
	BITM_FIFOCNTSTA_DATAFIFOCNT = 0x7FF << BITP_FIFOCNTSTA_DATAFIFOCNT

	BITP_SEQINFO_LEN  = 16
	BITM_SEQINFO_LEN  = 0x7FF << BITP_SEQINFO_LEN
	BITM_SEQINFO_ADDR = 0x7FF

	SLPKEY_UNLOCK = 0xA47E5
	SLPKEY_LOCK   = 0
)

// FIFO data sources.
const (
	FIFOSRC_SINC3      = 0
	FIFOSRC_DFT        = 2
	FIFOSRC_SINC2NOTCH = 3
	FIFOSRC_VAR        = 4
	FIFOSRC_MEAN       = 5
)

// Switch matrix.
const (
	BITM_SWCON_SWSOURCESEL = 1 << 16

	SWD_OPEN  = 0
	SWD_RCAL0 = 1 << 0
	SWD_AIN1  = 1 << 1
	SWD_AIN2  = 1 << 2
	SWD_AIN3  = 1 << 3
	SWD_CE0   = 1 << 4
	SWD_CE1   = 1 << 5
	SWD_SE0   = 1 << 9

	SWP_OPEN  = 0
	SWP_RCAL0 = 1 << 0
	SWP_AIN1  = 1 << 1
	SWP_AIN2  = 1 << 2
	SWP_AIN3  = 1 << 3
	SWP_RE0   = 1 << 4
	SWP_RE1   = 1 << 5
	SWP_SE0   = 1 << 6
	SWP_PL    = 1 << 13
	SWP_PL2   = 1 << 14

	SWN_OPEN  = 0
	SWN_AIN0  = 1 << 0
	SWN_AIN1  = 1 << 1
	SWN_AIN2  = 1 << 2
	SWN_AIN3  = 1 << 3
	SWN_SE0   = 1 << 8
	SWN_RCAL1 = 1 << 9
	SWN_NL    = 1 << 10
	SWN_NL2   = 1 << 11

	SWT_OPEN  = 0
	SWT_AIN0  = 1 << 0
	SWT_AIN1  = 1 << 1
	SWT_AIN2  = 1 << 2
	SWT_AIN3  = 1 << 3
	SWT_SE0   = 1 << 6
	SWT_RCAL1 = 1 << 7
	SWT_TRTIA = 1 << 8
)

// HS loop.
const (
	BITM_HSDACCON_ATTENEN    = 1 << 0
	BITP_HSDACCON_RATE       = 1
	BITM_HSDACCON_RATE       = 0xFF << BITP_HSDACCON_RATE
	BITM_HSDACCON_INAMPGNMDE = 1 << 12

	BITP_HSRTIACON_RTIACON = 0
	BITM_HSRTIACON_RTIACON = 0xF
	BITP_HSRTIACON_CTIACON = 5
	BITM_HSRTIACON_CTIACON = 0xFF << BITP_HSRTIACON_CTIACON
	BITM_HSRTIACON_TIASW6  = 1 << 13

	BITP_HSTIACON_VBIASSEL = 0
	BITM_HSTIACON_VBIASSEL = 0x3

	HSTIARTIA_200  = 0
	HSTIARTIA_1K   = 1
	HSTIARTIA_5K   = 2
	HSTIARTIA_10K  = 3
	HSTIARTIA_20K  = 4
	HSTIARTIA_40K  = 5
	HSTIARTIA_80K  = 6
	HSTIARTIA_160K = 7
	HSTIARTIA_OPEN = 8

	HSTIABIAS_1P1 = 0

	BITP_WGCON_TYPESEL = 1
	BITM_WGCON_TYPESEL = 0x3 << BITP_WGCON_TYPESEL
	WGTYPE_SIN         = 2

	WGFCW_MAX = 0xFFFFF
)

// LP loop and reference buffers.
const (
	BITM_LPREFBUFCON_LPBUF2P5DIS = 1 << 0
	BITM_LPREFBUFCON_LPREFDIS    = 1 << 1

	BITM_LPDACCON0_RSTEN = 1 << 0
	BITM_LPDACCON0_PWDEN = 1 << 1

	BITM_LPTIACON0_TIAPDEN = 1 << 0
	BITM_LPTIACON0_PAPDEN  = 1 << 1
)

// ADC, filters and DFT.
const (
	BITP_ADCCON_MUXSELP = 0
	BITM_ADCCON_MUXSELP = 0x3F
	BITP_ADCCON_MUXSELN = 8
	BITM_ADCCON_MUXSELN = 0x1F << BITP_ADCCON_MUXSELN
	BITP_ADCCON_GNPGA   = 16
	BITM_ADCCON_GNPGA   = 0x7 << BITP_ADCCON_GNPGA

	ADCMUXP_HSTIA_P = 0x01
	ADCMUXP_AIN0    = 0x04
	ADCMUXP_AIN1    = 0x05
	ADCMUXP_AIN2    = 0x06
	ADCMUXP_AIN3    = 0x07
	ADCMUXP_P_NODE  = 0x22

	ADCMUXN_HSTIA_N = 0x01
	ADCMUXN_AIN0    = 0x04
	ADCMUXN_AIN1    = 0x05
	ADCMUXN_AIN2    = 0x06
	ADCMUXN_AIN3    = 0x07
	ADCMUXN_N_NODE  = 0x14

	ADCPGA_1   = 0
	ADCPGA_1P5 = 1
	ADCPGA_2   = 2
	ADCPGA_4   = 3
	ADCPGA_9   = 4

	BITP_ADCFILTERCON_SINC2OSR = 8
	BITM_ADCFILTERCON_SINC2OSR = 0xF << BITP_ADCFILTERCON_SINC2OSR
	BITP_ADCFILTERCON_SINC3OSR = 12
	BITM_ADCFILTERCON_SINC3OSR = 0x3 << BITP_ADCFILTERCON_SINC3OSR
	BITM_ADCFILTERCON_SINC3BYP = 1 << 6
	BITM_ADCFILTERCON_LPFBYPEN = 1 << 4

	ADCSINC3OSR_5 = 0
	ADCSINC3OSR_4 = 1
	ADCSINC3OSR_2 = 2

	ADCSINC2OSR_22   = 0
	ADCSINC2OSR_44   = 1
	ADCSINC2OSR_89   = 2
	ADCSINC2OSR_178  = 3
	ADCSINC2OSR_267  = 4
	ADCSINC2OSR_533  = 5
	ADCSINC2OSR_640  = 6
	ADCSINC2OSR_667  = 7
	ADCSINC2OSR_800  = 8
	ADCSINC2OSR_889  = 9
	ADCSINC2OSR_1067 = 10
	ADCSINC2OSR_1333 = 11

	BITM_DFTCON_HANNINGEN = 1 << 0
	BITP_DFTCON_DFTNUM    = 4
	BITM_DFTCON_DFTNUM    = 0xF << BITP_DFTCON_DFTNUM
	BITP_DFTCON_DFTINSEL  = 20
	BITM_DFTCON_DFTINSEL  = 0x3 << BITP_DFTCON_DFTINSEL

	DFTNUM_4     = 0
	DFTNUM_8     = 1
	DFTNUM_16    = 2
	DFTNUM_32    = 3
	DFTNUM_64    = 4
	DFTNUM_128   = 5
	DFTNUM_256   = 6
	DFTNUM_512   = 7
	DFTNUM_1024  = 8
	DFTNUM_2048  = 9
	DFTNUM_4096  = 10
	DFTNUM_8192  = 11
	DFTNUM_16384 = 12

	DFTSRC_SINC2NOTCH = 0
	DFTSRC_SINC3      = 1
	DFTSRC_ADCRAW     = 2
)
