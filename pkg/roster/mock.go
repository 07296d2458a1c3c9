package roster

import "github.com/mouthwatch/platform/pkg/common/models"

// Mock returns the demo roster, highest-risk patients first.
func Mock() []models.Patient {
	patients := []models.Patient{
		{
			ID: "1", Name: "James Thornton", Age: 54,
			Email: "james.thornton@email.com", Phone: "+1 (416) 555-0201",
			ScanHistory: []models.Scan{
				{ID: "s1", Date: "Feb 21, 2026", RiskLevel: models.RiskRed, Score: 67.6, MLConfidence: 82.8, RiskFactors: []string{"Daily tobacco use", "Occasional alcohol"}},
				{ID: "s2", Date: "Feb 13, 2026", RiskLevel: models.RiskYellow, Score: 45.2, MLConfidence: 71.0, RiskFactors: []string{"Daily tobacco use"}},
				{ID: "s3", Date: "Feb 6, 2026", RiskLevel: models.RiskGreen, Score: 22.1, MLConfidence: 61.0, RiskFactors: []string{}},
			},
			Appointments: []models.Appointment{
				{ID: "a1", PatientID: "1", Date: "Feb 24, 2026", Time: "10:00 AM", Duration: 60, Type: "Oral Cancer Screening", Notes: "Follow up on high risk MouthWatch result"},
			},
			ClinicalNotes: "• Suspicious lesion lower left buccal mucosa\n• MouthWatch flagged high risk Feb 21\n• Daily smoker, cessation counselling provided\n• Recommend biopsy if lesion persists >2 weeks\n• F/U booked Feb 24",
			Annotations: []models.Annotation{
				{ID: "ann1", Position: models.Vec3{-0.3, -0.2, 0.4}, Severity: models.SeverityUrgent, Label: "Suspicious lesion", Note: "Flagged by MouthWatch, monitor closely"},
				{ID: "ann2", Position: models.Vec3{0.4, -0.1, 0.35}, Severity: models.SeverityWatch, Label: "Early cavity", Note: "Early demineralization, review at next visit"},
			},
		},
		{
			ID: "4", Name: "Emily Chen", Age: 61,
			Email: "emily.chen@email.com", Phone: "+1 (416) 555-0204",
			ScanHistory: []models.Scan{
				{ID: "s7", Date: "Feb 20, 2026", RiskLevel: models.RiskRed, Score: 78.4, MLConfidence: 88.2, RiskFactors: []string{"Prior oral cancer history", "Daily tobacco use", "HPV positive"}},
				{ID: "s8", Date: "Feb 5, 2026", RiskLevel: models.RiskRed, Score: 71.1, MLConfidence: 84.0, RiskFactors: []string{"Prior cancer"}},
			},
			Appointments: []models.Appointment{
				{ID: "a4", PatientID: "4", Date: "Feb 24, 2026", Time: "9:00 AM", Duration: 90, Type: "Urgent Consultation", Notes: "High risk, prior cancer history. Refer to oral surgeon."},
			},
			ClinicalNotes: "• Prior oral cancer 2019, treated successfully\n• Two consecutive high risk MouthWatch scans\n• HPV positive\n• Referring to oral surgeon for evaluation\n• Biopsy likely required\n• URGENT: do not delay referral",
			Annotations: []models.Annotation{
				{ID: "ann4", Position: models.Vec3{-0.4, -0.15, 0.38}, Severity: models.SeverityUrgent, Label: "Recurrence risk area", Note: "Prior cancer site, monitor extremely closely"},
				{ID: "ann5", Position: models.Vec3{0.1, -0.25, 0.42}, Severity: models.SeverityModerate, Label: "New lesion", Note: "Appeared since last visit"},
				{ID: "ann6", Position: models.Vec3{0.45, -0.05, 0.35}, Severity: models.SeverityWatch, Label: "Early cavity", Note: "Lower right molar"},
			},
		},
		{
			ID: "7", Name: "Robert Okafor", Age: 48,
			Email: "r.okafor@email.com", Phone: "+1 (416) 555-0207",
			ScanHistory: []models.Scan{
				{ID: "s13", Date: "Feb 19, 2026", RiskLevel: models.RiskRed, Score: 71.2, MLConfidence: 85.1, RiskFactors: []string{"Heavy alcohol consumption", "Daily tobacco use"}},
				{ID: "s14", Date: "Feb 10, 2026", RiskLevel: models.RiskYellow, Score: 52.3, MLConfidence: 74.0, RiskFactors: []string{"Heavy alcohol"}},
			},
			Appointments: []models.Appointment{
				{ID: "a7", PatientID: "7", Date: "Feb 25, 2026", Time: "3:00 PM", Duration: 60, Type: "Oral Cancer Screening", Notes: "Increasing risk trend, comprehensive exam required"},
			},
			ClinicalNotes: "• Heavy alcohol + daily tobacco, dual risk factors\n• Risk trend increasing across last 2 scans\n• White patch noted on right lateral tongue\n• Urgent screening booked Feb 25\n• Advised to reduce alcohol intake immediately",
			Annotations: []models.Annotation{
				{ID: "ann10", Position: models.Vec3{0.3, -0.2, 0.4}, Severity: models.SeverityUrgent, Label: "White patch", Note: "Right lateral tongue, leukoplakia suspected"},
				{ID: "ann11", Position: models.Vec3{-0.25, -0.1, 0.38}, Severity: models.SeverityModerate, Label: "Inflamed gum", Note: "Likely alcohol-related, monitor"},
			},
		},
		{
			ID: "2", Name: "Sarah Mitchell", Age: 34,
			Email: "sarah.mitchell@email.com", Phone: "+1 (416) 555-0202",
			ScanHistory: []models.Scan{
				{ID: "s4", Date: "Feb 18, 2026", RiskLevel: models.RiskYellow, Score: 42.3, MLConfidence: 68.5, RiskFactors: []string{"Occasional alcohol"}},
				{ID: "s5", Date: "Feb 4, 2026", RiskLevel: models.RiskGreen, Score: 18.0, MLConfidence: 55.0, RiskFactors: []string{}},
			},
			Appointments: []models.Appointment{
				{ID: "a2", PatientID: "2", Date: "Feb 25, 2026", Time: "2:00 PM", Duration: 30, Type: "Routine Checkup", Notes: "Monitor moderate risk result"},
			},
			ClinicalNotes: "• Moderate risk on latest scan, likely benign\n• No significant oral health history\n• Occasional alcohol noted on intake form\n• Risk trend stable to slight increase, monitor\n• Review at next visit in 4 weeks",
			Annotations: []models.Annotation{
				{ID: "ann3", Position: models.Vec3{0.2, 0.3, 0.8}, Severity: models.SeverityWatch, Label: "Minor irritation", Note: "Likely from grinding, recommend night guard"},
			},
		},
		{
			ID: "8", Name: "Priya Nair", Age: 29,
			Email: "priya.nair@email.com", Phone: "+1 (416) 555-0208",
			ScanHistory: []models.Scan{
				{ID: "s15", Date: "Feb 17, 2026", RiskLevel: models.RiskYellow, Score: 38.7, MLConfidence: 62.4, RiskFactors: []string{"HPV unknown"}},
			},
			Appointments: []models.Appointment{
				{ID: "a8", PatientID: "8", Date: "Feb 26, 2026", Time: "1:00 PM", Duration: 30, Type: "Routine Checkup", Notes: "First visit, follow up on MouthWatch yellow flag"},
			},
			ClinicalNotes: "• First time patient, referred via MouthWatch app\n• Yellow flag on first scan, low concern but worth monitoring\n• HPV status unknown, recommend testing\n• No tobacco or alcohol use reported\n• Book 3-month follow up",
		},
		{
			ID: "5", Name: "Daniel Park", Age: 41,
			Email: "d.park@email.com", Phone: "+1 (416) 555-0205",
			ScanHistory: []models.Scan{
				{ID: "s9", Date: "Feb 16, 2026", RiskLevel: models.RiskGreen, Score: 11.3, MLConfidence: 94.2, RiskFactors: []string{}},
				{ID: "s10", Date: "Feb 2, 2026", RiskLevel: models.RiskGreen, Score: 9.8, MLConfidence: 92.0, RiskFactors: []string{}},
			},
			Appointments: []models.Appointment{
				{ID: "a5", PatientID: "5", Date: "Feb 27, 2026", Time: "10:00 AM", Duration: 30, Type: "Routine Cleaning"},
			},
			ClinicalNotes: "• Consistently low risk across all scans\n• Excellent oral hygiene, no concerns\n• Non-smoker, non-drinker\n• Routine cleaning only\n• Next visit in 6 months",
		},
		{
			ID: "3", Name: "Michael Rodriguez", Age: 28,
			Email: "m.rodriguez@email.com", Phone: "+1 (416) 555-0203",
			ScanHistory: []models.Scan{
				{ID: "s6", Date: "Feb 15, 2026", RiskLevel: models.RiskGreen, Score: 14.2, MLConfidence: 91.0, RiskFactors: []string{}},
			},
			Appointments: []models.Appointment{
				{ID: "a3", PatientID: "3", Date: "Feb 26, 2026", Time: "11:00 AM", Duration: 45, Type: "Cleaning"},
			},
			ClinicalNotes: "• Healthy patient, low risk\n• Excellent oral hygiene\n• No risk factors reported\n• Routine cleaning only\n• 6-month recall",
		},
		{
			ID: "6", Name: "Linda Osei", Age: 67,
			Email: "linda.osei@email.com", Phone: "+1 (416) 555-0206",
			ScanHistory: []models.Scan{
				{ID: "s11", Date: "Feb 14, 2026", RiskLevel: models.RiskYellow, Score: 44.8, MLConfidence: 70.3, RiskFactors: []string{"Age 65+", "Occasional tobacco (historical)"}},
				{ID: "s12", Date: "Jan 28, 2026", RiskLevel: models.RiskYellow, Score: 41.2, MLConfidence: 67.0, RiskFactors: []string{"Age 65+"}},
			},
			Appointments: []models.Appointment{
				{ID: "a6", PatientID: "6", Date: "Feb 27, 2026", Time: "2:00 PM", Duration: 45, Type: "Checkup", Notes: "Persistent moderate risk, age-related monitoring"},
			},
			ClinicalNotes: "• Age 67, elevated baseline risk\n• Former smoker (quit 2015)\n• Two consecutive yellow flags on MouthWatch\n• Scores stable, not escalating\n• Continue 3-month monitoring schedule\n• Dry mouth reported, recommend saliva substitute",
			Annotations: []models.Annotation{
				{ID: "ann8", Position: models.Vec3{-0.1, -0.15, 0.4}, Severity: models.SeverityWatch, Label: "Dry tissue area", Note: "Xerostomia-related, recommend hydration + saliva substitute"},
				{ID: "ann9", Position: models.Vec3{0.35, -0.05, 0.36}, Severity: models.SeverityInfo, Label: "Old restoration", Note: "Crown from 2018, still intact"},
			},
		},
	}
	return normalize(patients)
}

// normalize fills empty slices and derives LastScan from history.
func normalize(patients []models.Patient) []models.Patient {
	for i := range patients {
		p := &patients[i]
		if p.ScanHistory == nil {
			p.ScanHistory = []models.Scan{}
		}
		if p.Appointments == nil {
			p.Appointments = []models.Appointment{}
		}
		if p.Annotations == nil {
			p.Annotations = []models.Annotation{}
		}
		p.SyncLastScan()
	}
	return patients
}
