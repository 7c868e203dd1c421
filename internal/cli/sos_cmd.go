// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/sos"
	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

// MsgLoadProfileFailed is shown when the stored profile cannot be fetched.
const MsgLoadProfileFailed = "Failed to load emergency information. Please try again later."

func sosCommand() *cli.Command {
	return &cli.Command{
		Name:  "sos",
		Usage: "view or edit your emergency information, or send an SOS alert",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "show your emergency information",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the profile as JSON"},
				},
				Action: runSOSShow,
			},
			{
				Name:  "save",
				Usage: "update your emergency information",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "blood-group", Usage: "one of A+, A-, B+, B-, O+, O-, AB+, AB-"},
					&cli.StringFlag{Name: "medical-history"},
					&cli.StringSliceFlag{Name: "add-contact", Usage: `emergency contact as "Name:Phone" (repeatable)`},
					&cli.IntSliceFlag{Name: "remove-contact", Usage: "contact number to remove, as listed by show (repeatable)"},
				},
				Action: runSOSSave,
			},
			{
				Name:   "alert",
				Usage:  "notify your emergency contacts",
				Flags:  []cli.Flag{confirmFlag},
				Action: runSOSAlert,
			},
		},
		Action: runSOSShow,
	}
}

func sosService(c *cli.Context, loginMsg string) (*Env, *sos.Service, error) {
	env, err := newEnv(c, false)
	if err != nil {
		return nil, nil, err
	}
	svc, err := env.SOS()
	if err != nil {
		env.Close()
		return nil, nil, fail(loginMsg, err)
	}
	return env, svc, nil
}

func runSOSShow(c *cli.Context) error {
	env, svc, err := sosService(c, sos.MsgLoginToSave)
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := svc.Load(c.Context)
	if err != nil {
		return fail(MsgLoadProfileFailed, err)
	}
	if c.Bool("json") {
		enc := json.NewEncoder(env.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	env.PrintMarkdown(sos.Markdown(p))
	return nil
}

func buildPatch(c *cli.Context) (sos.Patch, error) {
	var patch sos.Patch
	str := func(name string) *string {
		if !c.IsSet(name) {
			return nil
		}
		v := c.String(name)
		return &v
	}
	patch.Name = str("name")
	patch.Phone = str("phone")
	patch.Email = str("email")
	patch.BloodGroup = str("blood-group")
	patch.MedicalHistory = str("medical-history")

	for _, s := range c.StringSlice("add-contact") {
		contact, err := sos.ParseContact(s)
		if err != nil {
			return patch, err
		}
		patch.AddContacts = append(patch.AddContacts, contact)
	}
	for _, n := range c.IntSlice("remove-contact") {
		patch.RemoveContacts = append(patch.RemoveContacts, n-1)
	}
	return patch, nil
}

func runSOSSave(c *cli.Context) error {
	patch, err := buildPatch(c)
	if err != nil {
		return usageError(err.Error())
	}
	if patch.Empty() {
		return usageError("nothing to save: pass at least one field flag, see medai sos save --help")
	}

	env, svc, err := sosService(c, sos.MsgLoginToSave)
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := svc.Update(c.Context, patch)
	if err != nil {
		if errors.Is(err, sos.ErrInvalidProfile) {
			return usageError(err.Error())
		}
		return fail(sos.MsgSaveFailed, err)
	}
	env.Println(styles.RenderSuccess(sos.MsgSaved))
	env.PrintMarkdown(sos.Markdown(p))
	return nil
}

func runSOSAlert(c *cli.Context) error {
	env, svc, err := sosService(c, sos.MsgLoginToAlert)
	if err != nil {
		return err
	}
	defer env.Close()

	ok, err := RequireConfirmation(c, "Send SOS alert to your emergency contacts?")
	if err != nil {
		return err
	}
	if !ok {
		env.Println(styles.RenderInfo("Cancelled."))
		return nil
	}

	msg, err := svc.Alert(c.Context)
	if err != nil {
		return fail(msg, err)
	}
	env.Println(styles.RenderSuccess(msg))
	return nil
}
