// Package export produces the spreadsheet, evidence manifest and tax
// submission downloads.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/compliance"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var tracer = otel.Tracer("export_usecase")

var csvHeader = []string{"Date", "Activity", "Type", "Competency Area", "Hours", "Provider", "Outcome", "Evidence Files"}

type ExportUseCase struct {
	ws     *workspace.Workspace
	req    compliance.Requirements
	logger logger.Logger
	now    func() time.Time
}

func NewExportUseCase(ws *workspace.Workspace, req compliance.Requirements, log logger.Logger) *ExportUseCase {
	return &ExportUseCase{ws: ws, req: req, logger: log, now: time.Now}
}

// File is a ready-to-download export.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// ExecuteCSV writes one row per completed activity after two metadata
// lines and a blank line. Every cell is quoted.
func (uc *ExportUseCase) ExecuteCSV(ctx context.Context) (*File, error) {
	ctx, span := tracer.Start(ctx, "ExecuteCSV")
	defer span.End()

	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	now := uc.now()

	var sb strings.Builder
	fmt.Fprintf(&sb, "CPD Tracker Export - %s %s\n", d.UserInfo.FirstName, d.UserInfo.Surname)
	fmt.Fprintf(&sb, "Exported: %s\n", now.Format("2006-01-02"))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(csvHeader, ","))
	for _, a := range d.CompletedActivities {
		sb.WriteString("\n")
		writeRow(&sb, []string{
			string(a.Date),
			a.Activity,
			string(a.ActivityType),
			a.DevelopmentArea,
			rawHours(a),
			a.Provider,
			a.Outcome,
			strconv.Itoa(len(a.Attachments)),
		})
	}

	return &File{
		Name:        fmt.Sprintf("CPD_Activities_%s_%d.csv", d.UserInfo.MembershipNumber, now.Year()),
		ContentType: "text/csv; charset=utf-8",
		Content:     []byte(sb.String()),
	}, nil
}

func writeRow(sb *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(c, `"`, `""`))
		sb.WriteByte('"')
	}
}

// rawHours is the hours text as entered, falling back to the legacy field.
func rawHours(a activity.Completed) string {
	if a.CPDHours.IsSet() {
		return strings.TrimSpace(string(a.CPDHours))
	}
	return strings.TrimSpace(string(a.LegacyHours))
}

type ManifestAttachment struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	DateAdded time.Time `json:"dateAdded,omitzero"`
}

type ManifestActivity struct {
	ActivityName    string               `json:"activityName"`
	Date            activity.Date        `json:"date"`
	AttachmentCount int                  `json:"attachmentCount"`
	Attachments     []ManifestAttachment `json:"attachments"`
}

type Manifest struct {
	GeneratedDate    time.Time          `json:"generatedDate"`
	MemberName       string             `json:"memberName"`
	MembershipNumber string             `json:"membershipNumber"`
	Activities       []ManifestActivity `json:"activities"`
}

// ExecuteEvidenceManifest lists the evidence held for every completed
// activity, without the file contents.
func (uc *ExportUseCase) ExecuteEvidenceManifest(ctx context.Context) (*File, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	m := Manifest{
		GeneratedDate:    now.UTC(),
		MemberName:       d.UserInfo.FullName(),
		MembershipNumber: d.UserInfo.MembershipNumber,
		Activities:       make([]ManifestActivity, 0, len(d.CompletedActivities)),
	}
	for _, a := range d.CompletedActivities {
		ma := ManifestActivity{
			ActivityName:    a.Name(),
			Date:            a.Date,
			AttachmentCount: len(a.Attachments),
			Attachments:     make([]ManifestAttachment, 0, len(a.Attachments)),
		}
		for _, att := range a.Attachments {
			added := att.DateAdded
			if added.IsZero() {
				added = a.DateAdded
			}
			ma.Attachments = append(ma.Attachments, ManifestAttachment{Name: att.Name, Size: att.Size, Type: att.Type, DateAdded: added})
		}
		m.Activities = append(m.Activities, ma)
	}
	return uc.jsonFile(fmt.Sprintf("CPD_Evidence_Manifest_%s_%d.json", d.UserInfo.MembershipNumber, now.Year()), m)
}

type TaxpayerInfo struct {
	Name             string `json:"name"`
	MembershipNumber string `json:"membershipNumber"`
	FirmName         string `json:"firmName,omitempty"`
}

type SubmissionSummary struct {
	Year            int     `json:"year"`
	TotalActivities int     `json:"totalActivities"`
	TotalHours      float64 `json:"totalHours"`
	RequiredHours   float64 `json:"requiredHours"`
	Compliant       bool    `json:"compliant"`
}

type SubmissionActivity struct {
	Date         activity.Date  `json:"date"`
	ActivityType activity.Type  `json:"activityType"`
	Hours        activity.Hours `json:"hours"`
	Description  string         `json:"description,omitempty"`
	Evidence     bool           `json:"evidence"`
	Provider     string         `json:"provider,omitempty"`
}

type Submission struct {
	SubmissionDate time.Time            `json:"submissionDate"`
	TaxpayerInfo   TaxpayerInfo         `json:"taxpayerInfo"`
	CPDSummary     SubmissionSummary    `json:"cpdSummary"`
	Activities     []SubmissionActivity `json:"activities"`
}

// BuildSubmission summarises the activities dated in now's year against the
// total-hours requirement.
func BuildSubmission(acts []activity.Completed, info TaxpayerInfo, req compliance.Requirements, now time.Time) Submission {
	current := compliance.InYear(acts, now.Year())
	snap := compliance.Calculate(current, req)
	s := Submission{
		SubmissionDate: now.UTC(),
		TaxpayerInfo:   info,
		CPDSummary: SubmissionSummary{
			Year:            now.Year(),
			TotalActivities: len(current),
			TotalHours:      snap.Total.Hours,
			RequiredHours:   req.TotalHours,
			Compliant:       snap.Total.Met,
		},
		Activities: make([]SubmissionActivity, 0, len(current)),
	}
	for _, a := range current {
		h := a.CPDHours
		if !h.IsSet() {
			h = a.LegacyHours
		}
		s.Activities = append(s.Activities, SubmissionActivity{
			Date:         a.Date,
			ActivityType: a.ActivityType,
			Hours:        h,
			Description:  a.Description,
			Evidence:     len(a.Attachments) > 0,
			Provider:     a.Provider,
		})
	}
	return s
}

func (uc *ExportUseCase) ExecuteTaxSubmission(ctx context.Context) (*File, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	s := BuildSubmission(d.CompletedActivities, TaxpayerInfo{
		Name:             d.UserInfo.FullName(),
		MembershipNumber: d.UserInfo.MembershipNumber,
		FirmName:         d.UserInfo.FirmName,
	}, uc.req, now)
	return uc.jsonFile(fmt.Sprintf("SARS_CPD_Submission_%s_%d.json", d.UserInfo.MembershipNumber, now.Year()), s)
}

func (uc *ExportUseCase) jsonFile(name string, v any) (*File, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		uc.logger.Error("Failed to encode export", err)
		return nil, apperror.NewInternal("failed to encode export", err)
	}
	return &File{Name: name, ContentType: "application/json", Content: b}, nil
}
